package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/temptrack/internal/settings"
	"github.com/i474232898/temptrack/internal/units"
	"github.com/i474232898/temptrack/internal/weather"
)

func TestRenderText(t *testing.T) {
	avg := 12.0
	record := weather.WeatherRecord{
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
	days := []weather.ForecastDay{{Date: "2025-06-01", TemperatureC: 21, IconCode: "01d"}}
	view := weather.NewView(record, days, &avg, units.Metric, time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC))
	view.LocationSource = weather.SourceDetected
	view.Warnings = []weather.Warning{{Section: weather.SectionHistorical, Message: "history missing"}}

	var buf bytes.Buffer
	renderText(&buf, view)
	out := buf.String()

	for _, want := range []string{
		"☀️ Mississauga, CA",
		"detected from your IP",
		"Temperature: 20.0°C (feels like 18.5°C)",
		"Humidity:    60%",
		"Wind:        18.0 km/h E",
		"Local time:  Sun Jun 1 12:00 (UTC-04:00)",
		"8.0°C warmer than usual for this date (10-year average: 12.0°C)",
		"2025-06-01  ☀️  21°C",
		"Note: history missing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestComparisonLine(t *testing.T) {
	tests := []struct {
		kind weather.ComparisonKind
		want string
	}{
		{kind: weather.Typical, want: "typical for this date (10-year average: 59.0°F)"},
		{kind: weather.Warmer, want: "9.0°F warmer"},
		{kind: weather.Colder, want: "9.0°F colder"},
	}
	for _, tt := range tests {
		got := comparisonLine(&weather.Comparison{Kind: tt.kind, Magnitude: 9, Average: 59, Unit: "°F"})
		if !strings.Contains(got, tt.want) {
			t.Errorf("comparisonLine(%s) = %q, want it to contain %q", tt.kind, got, tt.want)
		}
	}
}

func TestRunOnceJSON(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	owm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/weather":
			_, _ = w.Write([]byte(`{"coord":{"lon":34.89,"lat":31.95},"weather":[{"description":"clear sky","icon":"01d"}],
				"main":{"temp":68,"feels_like":66,"humidity":40},"wind":{"speed":10,"deg":0},"sys":{"country":"IL"},"timezone":10800,"name":"Lod"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer owm.Close()

	archive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer archive.Close()

	settingsPath := filepath.Join(dir, "settings.json")
	t.Setenv("TEMPTRACK_OPENWEATHER_APIKEY", "3f1c9a0b7d2e4f5a6b7c8d9e0f1a2b3c")
	t.Setenv("TEMPTRACK_OPENWEATHER_BASEURL", owm.URL)
	t.Setenv("TEMPTRACK_ARCHIVE_BASEURL", archive.URL)
	t.Setenv("TEMPTRACK_GEOLOCATION_ENABLED", "false")
	t.Setenv("TEMPTRACK_SETTINGS_PATH", settingsPath)
	t.Setenv("TEMPTRACK_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--location", "Lod,IL", "--units", "imperial", "--json"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}

	var view weather.View
	if err := json.Unmarshal(stdout.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout.String())
	}
	if view.Current.DisplayName != "Lod, IL" || view.Units != units.Imperial {
		t.Errorf("unexpected view header: %q %q", view.Current.DisplayName, view.Units)
	}
	if view.Current.WindDirection != "N" {
		t.Errorf("expected N wind, got %q", view.Current.WindDirection)
	}
	if view.Comparison != nil || len(view.Forecast) != 0 || len(view.Warnings) != 2 {
		t.Errorf("expected both optional sections degraded, got %+v", view.Warnings)
	}

	raw, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
	var prefs settings.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if prefs.DefaultCity != "Lod,IL" || prefs.Units != units.Imperial {
		t.Errorf("unexpected saved preferences %+v", prefs)
	}
}

func TestRunConfigError(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("TEMPTRACK_OPENWEATHER_APIKEY", "PASTE_YOUR_API_KEY_HERE")

	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "configuration error") {
		t.Errorf("expected configuration error, got %q", stderr.String())
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
