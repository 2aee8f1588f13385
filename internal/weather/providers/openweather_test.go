package providers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/i474232898/temptrack/internal/units"
	"github.com/i474232898/temptrack/internal/weather"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const mississaugaCurrent = `{
	"coord": {"lon": -79.65, "lat": 43.58},
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 20, "feels_like": 18.5, "humidity": 60},
	"wind": {"speed": 5, "deg": 90},
	"sys": {"country": "CA"},
	"timezone": -14400,
	"name": "Mississauga"
}`

func TestFetchCurrentMetric(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, mississaugaCurrent, func(r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Mississauga" || q.Get("appid") != "key" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
	})

	p := NewOpenWeatherProvider(srv.URL, "key", time.Second, discardLogger())
	got, err := p.FetchCurrent(context.Background(), "Mississauga", units.Metric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := weather.WeatherRecord{
		Location:         weather.Location{Name: "Mississauga", CountryCode: "CA", Latitude: 43.58, Longitude: -79.65},
		DisplayName:      "Mississauga, CA",
		TemperatureC:     20,
		FeelsLikeC:       18.5,
		HumidityPct:      60,
		ConditionText:    "Clear Sky",
		IconCode:         "01d",
		UTCOffsetSeconds: -14400,
		WindSpeedMs:      5,
		WindDirectionDeg: 90,
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	view := weather.NewView(got, nil, nil, units.Metric, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if diff := cmp.Diff(18.0, view.Current.WindSpeed, approx); diff != "" {
		t.Errorf("wind speed mismatch (-want +got):\n%s", diff)
	}
	if view.Current.WindDirection != "E" {
		t.Errorf("expected wind direction E, got %q", view.Current.WindDirection)
	}
	if view.Current.Emoji != "☀️" {
		t.Errorf("expected sun emoji, got %q", view.Current.Emoji)
	}
	if view.ComparisonAvailable() {
		t.Errorf("expected no comparison without history")
	}
}

func TestFetchCurrentImperialIsNormalized(t *testing.T) {
	body := `{"coord":{"lon":34.89,"lat":31.95},"weather":[{"description":"few clouds","icon":"02n"}],
		"main":{"temp":68,"feels_like":50,"humidity":40},"wind":{"speed":10,"deg":200},"sys":{"country":"IL"},"name":"Lod"}`
	srv := jsonServer(t, http.StatusOK, body, func(r *http.Request) {
		if got := r.URL.Query().Get("units"); got != "imperial" {
			t.Errorf("expected imperial units in query, got %q", got)
		}
	})

	p := NewOpenWeatherProvider(srv.URL, "key", time.Second, discardLogger())
	got, err := p.FetchCurrent(context.Background(), "Lod,IL", units.Imperial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(20.0, got.TemperatureC, approx); diff != "" {
		t.Errorf("temperature mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(10.0, got.FeelsLikeC, approx); diff != "" {
		t.Errorf("feels-like mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(units.MphToMs(10), got.WindSpeedMs, approx); diff != "" {
		t.Errorf("wind mismatch (-want +got):\n%s", diff)
	}
	if got.ConditionText != "Few Clouds" {
		t.Errorf("expected title-cased condition, got %q", got.ConditionText)
	}
}

func TestFetchCurrentMissingOptionalBlocks(t *testing.T) {
	body := `{"coord":{"lon":1,"lat":2},"weather":[{"description":"mist","icon":"50d"}],
		"main":{"temp":3,"feels_like":1,"humidity":90},"name":"Nowhere"}`
	srv := jsonServer(t, http.StatusOK, body, nil)

	p := NewOpenWeatherProvider(srv.URL, "key", time.Second, discardLogger())
	got, err := p.FetchCurrent(context.Background(), "Nowhere", units.Metric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DisplayName != "Nowhere" {
		t.Errorf("expected display name without country, got %q", got.DisplayName)
	}
	if got.WindSpeedMs != 0 || got.WindDirectionDeg != 0 {
		t.Errorf("expected zero wind, got %v m/s at %v°", got.WindSpeedMs, got.WindDirectionDeg)
	}
}

func TestFetchCurrentErrors(t *testing.T) {
	longBody := strings.Repeat("x", 1000)

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		notFound   bool
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`, wantStatus: 404, notFound: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"cod":401}`, wantStatus: 401},
		{name: "server error truncated", status: http.StatusInternalServerError, body: longBody, wantStatus: 500},
		{name: "malformed json", status: http.StatusOK, body: `{not json`},
		{name: "missing coordinates", status: http.StatusOK, body: `{"main":{"temp":1},"name":"X"}`},
		{name: "missing main block", status: http.StatusOK, body: `{"coord":{"lat":1,"lon":2},"name":"X"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, tt.body, nil)
			p := NewOpenWeatherProvider(srv.URL, "key", time.Second, discardLogger())

			_, err := p.FetchCurrent(context.Background(), "Atlantis", units.Metric)
			var provErr *weather.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if provErr.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, provErr.StatusCode)
			}
			if provErr.NotFound() != tt.notFound {
				t.Errorf("expected NotFound=%v", tt.notFound)
			}
			if len(provErr.Body) > 300 {
				t.Errorf("expected body truncated to 300 bytes, got %d", len(provErr.Body))
			}
		})
	}
}

func TestFetchCurrentWithoutAPIKey(t *testing.T) {
	var calls atomic.Int32
	srv := jsonServer(t, http.StatusOK, mississaugaCurrent, func(*http.Request) { calls.Add(1) })

	p := NewOpenWeatherProvider(srv.URL, "", time.Second, discardLogger())
	_, err := p.FetchCurrent(context.Background(), "Mississauga", units.Metric)

	var cfgErr *weather.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network call, got %d", calls.Load())
	}
}

func TestFetchWeekly(t *testing.T) {
	body := `{"list":[
		{"dt_txt":"2025-06-01 12:00:00","main":{"temp":20.6},"weather":[{"icon":"01d"}]},
		{"dt_txt":"2025-06-01 15:00:00","main":{"temp":25.0},"weather":[{"icon":"02d"}]},
		{"dt_txt":"2025-06-02 00:00:00","main":{"temp":14.4},"weather":[{"icon":"10n"}]},
		{"dt_txt":"2025-06-03 00:00:00","main":{"temp":-0.6},"weather":[]}
	]}`
	srv := jsonServer(t, http.StatusOK, body, func(r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/forecast" || q.Get("units") != "metric" || q.Get("lat") == "" || q.Get("lon") == "" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
	})

	p := NewOpenWeatherProvider(srv.URL, "key", time.Second, discardLogger())
	got, ok := p.FetchWeekly(context.Background(), 43.58, -79.65)
	if !ok {
		t.Fatalf("expected forecast to be available")
	}

	want := []weather.ForecastDay{
		{Date: "2025-06-01", TemperatureC: 21, ReadingC: 20.6, IconCode: "01d"},
		{Date: "2025-06-02", TemperatureC: 14, ReadingC: 14.4, IconCode: "10n"},
		{Date: "2025-06-03", TemperatureC: -1, ReadingC: -0.6, IconCode: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("forecast mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchWeeklyUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusBadGateway, body: `oops`},
		{name: "malformed", status: http.StatusOK, body: `[`},
		{name: "empty list", status: http.StatusOK, body: `{"list":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, tt.body, nil)
			p := NewOpenWeatherProvider(srv.URL, "key", time.Second, discardLogger())
			days, ok := p.FetchWeekly(context.Background(), 1, 2)
			if ok || days != nil {
				t.Fatalf("expected unavailable forecast, got %v", days)
			}
		})
	}
}

func TestClampTimeout(t *testing.T) {
	tests := []struct {
		in, ceiling, want time.Duration
	}{
		{in: 0, ceiling: MaxWeatherTimeout, want: MaxWeatherTimeout},
		{in: time.Minute, ceiling: MaxWeatherTimeout, want: MaxWeatherTimeout},
		{in: 2 * time.Second, ceiling: MaxGeolocationTimeout, want: 2 * time.Second},
		{in: -time.Second, ceiling: MaxGeolocationTimeout, want: MaxGeolocationTimeout},
	}
	for _, tt := range tests {
		if got := clampTimeout(tt.in, tt.ceiling); got != tt.want {
			t.Errorf("clampTimeout(%v, %v) = %v, want %v", tt.in, tt.ceiling, got, tt.want)
		}
	}
}
