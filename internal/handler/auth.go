package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/handler/dto"
	"github.com/makkenzo/gdb-api/internal/handler/middleware"
	"github.com/makkenzo/gdb-api/internal/openapi"
	"github.com/makkenzo/gdb-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.Named("AuthHandler"),
	}
}

func (h *AuthHandler) Register(r *Router) {
	auth := r.Group("/auth", "Auth", openapi.AllowAnonymous{})
	auth.Handle(openapi.Endpoint{
		Method:      http.MethodPost,
		Path:        "/token",
		Summary:     "Issue an access token",
		Description: "Exchanges username and password for a bearer token.",
		Request:     dto.TokenRequest{},
		Responses: []openapi.Response{
			{Status: http.StatusOK, Body: dto.TokenResponse{}},
			{Status: http.StatusUnauthorized, Description: dto.MessageUnauthorized, Body: dto.UnauthorizedErrorResponse()},
		},
	}, middleware.BindJSON[dto.TokenRequest](), h.Token)
}

func (h *AuthHandler) Token(c *gin.Context) {
	req, _ := middleware.Payload[dto.TokenRequest](c)

	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(time.Until(token.ExpiresAt).Round(time.Second).Seconds()),
	})
}
