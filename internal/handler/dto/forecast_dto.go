package dto

import (
	"strings"
	"time"

	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"github.com/makkenzo/gdb-api/internal/validation"
)

type CreateForecastRequest struct {
	Date         time.Time `json:"date" binding:"required" example:"2024-05-02T00:00:00Z"`
	TemperatureC int       `json:"temperatureC" binding:"gte=-60,lte=60" example:"21"`
	Summary      string    `json:"summary" binding:"max=200" example:"Mild"`
	Outlook      string    `json:"outlook" binding:"required,oneof=sunny cloudy rainy stormy snowy" example:"sunny"`
}

func (r *CreateForecastRequest) Validate() validation.FieldErrors {
	fields := validation.FieldErrors{}
	if forecast.Outlook(r.Outlook) == forecast.OutlookStormy && strings.TrimSpace(r.Summary) == "" {
		fields.Add("summary", "Field 'summary' is required when outlook is 'stormy'")
	}
	return fields
}

type ListForecastsQuery struct {
	Limit  int `form:"limit,default=20" binding:"gte=1,lte=100"`
	Offset int `form:"offset,default=0" binding:"gte=0"`
}

type ForecastResponse struct {
	ID           string    `json:"id" example:"7f0c1f6e-4f43-4f43-9d8e-6c1d3f8a2b10"`
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC"`
	TemperatureF int       `json:"temperatureF"`
	Summary      string    `json:"summary,omitempty"`
	Outlook      string    `json:"outlook" enums:"sunny,cloudy,rainy,stormy,snowy"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ForecastPage struct {
	Items  []ForecastResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
