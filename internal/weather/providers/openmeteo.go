package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/temptrack/internal/weather"
)

// API Docs: https://open-meteo.com/en/docs/historical-weather-api
// Sample request:
// https://archive-api.open-meteo.com/v1/archive?latitude=43.59&longitude=-79.64&start_date=2015-10-18&end_date=2024-10-18&daily=temperature_2m_mean&timezone=auto
const (
	DefaultArchiveBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	// historyYears is how far back the sampled window reaches.
	historyYears = 10
)

// OpenMeteoProvider computes a historical average temperature for today's
// calendar date from the Open-Meteo archive.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
	now     func() time.Time
}

func NewOpenMeteoProvider(baseURL string, timeout time.Duration, logger *slog.Logger) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultArchiveBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo-archive",
		baseURL: baseURL,
		client:  newHTTPClient(timeout, MaxWeatherTimeout),
		circuit: newBreaker("openmeteo-archive"),
		logger:  logger.With("component", "history-client"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type archivePayload struct {
	Daily *struct {
		Temperature2mMean []*float64 `json:"temperature_2m_mean"`
	} `json:"daily"`
}

// FetchAverage returns the mean of every daily mean temperature in the
// window ending on today's date last year. Failures and empty data report
// false.
func (p *OpenMeteoProvider) FetchAverage(ctx context.Context, latitude, longitude float64) (float64, bool) {
	start, end := historyWindow(p.now())

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", latitude))
		values.Set("longitude", fmt.Sprintf("%f", longitude))
		values.Set("start_date", start)
		values.Set("end_date", end)
		values.Set("daily", "temperature_2m_mean")
		values.Set("timezone", "auto")
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	body, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		p.logger.Warn("failed to fetch historical data", "latitude", latitude, "longitude", longitude, "error", err)
		return 0, false
	}

	var payload archivePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		p.logger.Warn("failed to decode historical response", "error", err)
		return 0, false
	}
	if payload.Daily == nil {
		p.logger.Warn("historical response has no daily block")
		return 0, false
	}

	samples := nonNullSamples(payload.Daily.Temperature2mMean)
	avg, ok := weather.Mean(samples)
	if !ok {
		p.logger.Warn("no historical samples available")
		return 0, false
	}

	p.logger.Debug("computed historical average", "samples", len(samples), "average_c", avg)
	return avg, true
}

// historyWindow returns the start and end dates covering today's month and
// day from ten years ago through last year. Feb 29 maps to Feb 28.
func historyWindow(now time.Time) (string, string) {
	month, day := now.Month(), now.Day()
	if month == time.February && day == 29 {
		day = 28
	}
	format := func(year int) string {
		return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
	}
	return format(now.Year() - historyYears), format(now.Year() - 1)
}

// nonNullSamples drops the days the archive has no value for.
func nonNullSamples(temps []*float64) []float64 {
	samples := make([]float64, 0, len(temps))
	for _, t := range temps {
		if t != nil {
			samples = append(samples, *t)
		}
	}
	return samples
}
