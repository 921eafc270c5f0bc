package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"github.com/makkenzo/gdb-api/internal/handler/dto"
	"github.com/makkenzo/gdb-api/internal/handler/middleware"
	"github.com/makkenzo/gdb-api/internal/mapper"
	"github.com/makkenzo/gdb-api/internal/openapi"
	"github.com/makkenzo/gdb-api/internal/service"
	"github.com/makkenzo/gdb-api/internal/validation"
	"go.uber.org/zap"
)

// v1 lists a fixed window; paging arrived with v2.
const v1ListLimit = 10

type ForecastHandler struct {
	service *service.ForecastService
	mapper  *mapper.Mapper
	logger  *zap.Logger
}

func NewForecastHandler(service *service.ForecastService, m *mapper.Mapper, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		service: service,
		mapper:  m,
		logger:  logger.Named("ForecastHandler"),
	}
}

func (h *ForecastHandler) RegisterV1(r *Router) {
	forecasts := r.Group("/forecasts", "Forecasts", openapi.Authorize{})

	forecasts.Handle(openapi.Endpoint{
		Method:     http.MethodGet,
		Path:       "",
		Summary:    "List the latest forecasts",
		Attributes: []openapi.Attribute{openapi.AllowAnonymous{}},
		Responses:  []openapi.Response{{Status: http.StatusOK, Body: []dto.ForecastResponse{}}},
	}, h.ListLatest)

	forecasts.Handle(openapi.Endpoint{
		Method:  http.MethodGet,
		Path:    "/:id",
		Summary: "Get a forecast by ID",
		Responses: []openapi.Response{
			{Status: http.StatusOK, Body: dto.ForecastResponse{}},
			{Status: http.StatusNotFound, Body: dto.NewErrorResponse("", "", "")},
		},
	}, h.GetByID)

	forecasts.Handle(openapi.Endpoint{
		Method:  http.MethodPost,
		Path:    "",
		Summary: "Create a forecast",
		Request: dto.CreateForecastRequest{},
		Responses: []openapi.Response{
			{Status: http.StatusCreated, Body: dto.ForecastResponse{}},
		},
	}, middleware.BindJSON[dto.CreateForecastRequest](), h.Create)
}

func (h *ForecastHandler) RegisterV2(r *Router) {
	forecasts := r.Group("/forecasts", "Forecasts", openapi.Authorize{})

	forecasts.Handle(openapi.Endpoint{
		Method:    http.MethodGet,
		Path:      "",
		Summary:   "List forecasts page by page",
		Query:     dto.ListForecastsQuery{},
		Responses: []openapi.Response{{Status: http.StatusOK, Body: dto.ForecastPage{}}},
	}, middleware.BindQuery[dto.ListForecastsQuery](), h.List)
}

func (h *ForecastHandler) ListLatest(c *gin.Context) {
	items, _, err := h.service.List(c.Request.Context(), forecast.ListParams{Limit: v1ListLimit})
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := mapper.MapSlice[dto.ForecastResponse](h.mapper, items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ForecastHandler) List(c *gin.Context) {
	q, _ := middleware.Payload[dto.ListForecastsQuery](c)

	items, total, err := h.service.List(c.Request.Context(), forecast.ListParams{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := mapper.MapSlice[dto.ForecastResponse](h.mapper, items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ForecastPage{
		Items:  resp,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

func (h *ForecastHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fields := validation.FieldErrors{}
		fields.Add("id", "Field 'id' must be a valid UUID")
		_ = c.Error(validation.NewError(fields))
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var resp dto.ForecastResponse
	if err := h.mapper.Map(&resp, f); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ForecastHandler) Create(c *gin.Context) {
	req, _ := middleware.Payload[dto.CreateForecastRequest](c)

	var createdBy string
	if claims := middleware.GetClaims(c); claims != nil {
		createdBy = claims.Subject
	}

	f, err := h.service.Create(c.Request.Context(), &req, createdBy)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var resp dto.ForecastResponse
	if err := h.mapper.Map(&resp, f); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+resp.ID)
	c.JSON(http.StatusCreated, resp)
}
