package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/temptrack/internal/units"
	"github.com/i474232898/temptrack/internal/weather"
)

// API Docs: https://openweathermap.org/current and https://openweathermap.org/forecast5
// Sample requests:
// - https://api.openweathermap.org/data/2.5/weather?q=Lod,IL&appid=KEY&units=metric
// - https://api.openweathermap.org/data/2.5/forecast?lat=31.95&lon=34.89&appid=KEY&units=metric
const (
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

	openWeatherName = "openweathermap"
)

// OpenWeatherProvider fetches current conditions and the 5-day/3-hour
// forecast from OpenWeatherMap.
type OpenWeatherProvider struct {
	name            string
	apiKey          string
	baseURL         string
	client          *http.Client
	currentCircuit  *gobreaker.CircuitBreaker
	forecastCircuit *gobreaker.CircuitBreaker
	logger          *slog.Logger
}

// NewOpenWeatherProvider creates a provider. An empty baseURL selects the
// public endpoint; timeout is clamped to 20s.
func NewOpenWeatherProvider(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:            openWeatherName,
		apiKey:          apiKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          newHTTPClient(timeout, MaxWeatherTimeout),
		currentCircuit:  newBreaker("openweather-current"),
		forecastCircuit: newBreaker("openweather-forecast"),
		logger:          logger.With("component", "openweather-client"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// currentPayload mirrors the fields used from /weather. Blocks that may be
// missing are pointers so their absence can be told apart from zeros.
type currentPayload struct {
	Name  string `json:"name"`
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

// FetchCurrent queries current conditions for location in unit system u and
// normalizes the reply into a metric WeatherRecord.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, location string, u units.System) (weather.WeatherRecord, error) {
	if p.apiKey == "" {
		return weather.WeatherRecord{}, &weather.ConfigError{Field: "openweather.apiKey", Reason: "openweather api key is not configured"}
	}
	if !u.Valid() {
		u = units.Metric
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", location)
		values.Set("appid", p.apiKey)
		values.Set("units", string(u))
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/weather?"+values.Encode(), nil)
	}

	p.logger.Debug("fetching current conditions", "location", location, "units", u)

	body, err := doRequest(ctx, p.client, p.currentCircuit, buildRequest)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			p.logger.Error("current conditions API returned error",
				"status_code", se.StatusCode,
				"response_body", weather.Truncate(se.Body, 300),
			)
			return weather.WeatherRecord{}, weather.NewProviderError(p.name, se.StatusCode, se.Body, err)
		}
		return weather.WeatherRecord{}, weather.NewProviderError(p.name, 0, "", err)
	}

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.WeatherRecord{}, weather.NewProviderError(p.name, 0, "", fmt.Errorf("failed to decode response: %w", err))
	}

	record, err := mapCurrentPayload(payload, u)
	if err != nil {
		return weather.WeatherRecord{}, weather.NewProviderError(p.name, 0, "", err)
	}

	p.logger.Debug("successfully fetched current conditions",
		"location", record.DisplayName,
		"temperature_c", record.TemperatureC,
	)

	return record, nil
}

// mapCurrentPayload converts the provider payload into the canonical record.
func mapCurrentPayload(payload currentPayload, u units.System) (weather.WeatherRecord, error) {
	if payload.Coord == nil {
		return weather.WeatherRecord{}, errors.New("response has no coordinates")
	}
	if payload.Main == nil {
		return weather.WeatherRecord{}, errors.New("response has no temperature block")
	}

	loc := weather.Location{
		Name:        payload.Name,
		CountryCode: payload.Sys.Country,
		Latitude:    payload.Coord.Lat,
		Longitude:   payload.Coord.Lon,
	}

	var description, icon string
	if len(payload.Weather) > 0 {
		description = payload.Weather[0].Description
		icon = payload.Weather[0].Icon
	}

	temp := payload.Main.Temp
	feels := payload.Main.FeelsLike
	wind := payload.Wind.Speed
	if u == units.Imperial {
		temp = units.FahrenheitToCelsius(temp)
		feels = units.FahrenheitToCelsius(feels)
		wind = units.MphToMs(wind)
	}

	return weather.WeatherRecord{
		Location:         loc,
		DisplayName:      loc.DisplayName(),
		TemperatureC:     temp,
		FeelsLikeC:       feels,
		HumidityPct:      payload.Main.Humidity,
		ConditionText:    cases.Title(language.English).String(description),
		IconCode:         icon,
		UTCOffsetSeconds: payload.Timezone,
		WindSpeedMs:      wind,
		WindDirectionDeg: payload.Wind.Deg,
	}, nil
}

type forecastPayload struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

// FetchWeekly returns one reading per calendar date, at most seven. Any
// failure is logged and reported as unavailable.
func (p *OpenWeatherProvider) FetchWeekly(ctx context.Context, latitude, longitude float64) ([]weather.ForecastDay, bool) {
	if p.apiKey == "" {
		p.logger.Warn("skipping forecast, api key is not configured")
		return nil, false
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", latitude))
		values.Set("lon", fmt.Sprintf("%f", longitude))
		values.Set("appid", p.apiKey)
		values.Set("units", string(units.Metric))
		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/forecast?"+values.Encode(), nil)
	}

	body, err := doRequest(ctx, p.client, p.forecastCircuit, buildRequest)
	if err != nil {
		p.logger.Warn("failed to fetch forecast", "latitude", latitude, "longitude", longitude, "error", err)
		return nil, false
	}

	var payload forecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		p.logger.Warn("failed to decode forecast response", "error", err)
		return nil, false
	}

	days := weather.ReduceDaily(mapForecastPayload(payload), weather.MaxForecastDays)
	if len(days) == 0 {
		return nil, false
	}

	p.logger.Debug("successfully fetched forecast", "entries", len(payload.List), "days", len(days))
	return days, true
}

func mapForecastPayload(payload forecastPayload) []weather.ForecastReading {
	readings := make([]weather.ForecastReading, 0, len(payload.List))
	for _, item := range payload.List {
		var icon string
		if len(item.Weather) > 0 {
			icon = item.Weather[0].Icon
		}
		readings = append(readings, weather.ForecastReading{
			Timestamp:    item.DtTxt,
			TemperatureC: item.Main.Temp,
			IconCode:     icon,
		})
	}
	return readings
}
