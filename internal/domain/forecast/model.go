package forecast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/gdb-api/internal/ierr"
)

type Outlook string

const (
	OutlookSunny  Outlook = "sunny"
	OutlookCloudy Outlook = "cloudy"
	OutlookRainy  Outlook = "rainy"
	OutlookStormy Outlook = "stormy"
	OutlookSnowy  Outlook = "snowy"
)

var ErrForecastNotFound = fmt.Errorf("%w: forecast", ierr.ErrNotFound)

type Forecast struct {
	ID           uuid.UUID
	Date         time.Time
	TemperatureC int
	Summary      string
	Outlook      Outlook
	CreatedBy    string
	CreatedAt    time.Time
}

func (f *Forecast) TemperatureF() int {
	return 32 + int(float64(f.TemperatureC)/0.5556)
}
