package weather

import (
	"context"

	"github.com/i474232898/temptrack/internal/settings"
	"github.com/i474232898/temptrack/internal/units"
)

// CurrentProvider resolves a free-text location and returns its current
// conditions. Any failure is fatal to the request.
type CurrentProvider interface {
	FetchCurrent(ctx context.Context, location string, u units.System) (WeatherRecord, error)
}

// ForecastProvider returns up to seven daily readings. ok is false when the
// forecast is unavailable.
type ForecastProvider interface {
	FetchWeekly(ctx context.Context, latitude, longitude float64) (days []ForecastDay, ok bool)
}

// HistoryProvider returns the ten-year mean temperature in °C for today's
// calendar date. ok is false when no data is available.
type HistoryProvider interface {
	FetchAverage(ctx context.Context, latitude, longitude float64) (avgC float64, ok bool)
}

// Locator detects the caller's location as "City,CC" or "City".
type Locator interface {
	DetectLocation(ctx context.Context) (location string, ok bool)
}

// TimezoneService maps coordinates to an IANA zone name.
type TimezoneService interface {
	GetTimezone(latitude, longitude float64) (string, error)
}

// PreferencesStore loads and saves the persisted preferences.
type PreferencesStore interface {
	Load() settings.Preferences
	Save(prefs settings.Preferences) error
}

// ViewCache memoizes the most recent view.
type ViewCache interface {
	Get(key string) (*View, bool)
	Set(key string, view *View)
	Invalidate()
}
