package weather

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/i474232898/temptrack/internal/units"
)

// Location is a query resolved by the current-conditions provider.
// Latitude and Longitude are always within their valid ranges.
type Location struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"countryCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// DisplayName renders "City, CC", or just the city when the country is unknown.
func (l Location) DisplayName() string {
	if l.CountryCode == "" {
		return l.Name
	}
	return l.Name + ", " + l.CountryCode
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", l.Longitude)
	}
	return nil
}

// WeatherRecord is the normalized "now" reading. It is always metric
// (°C, m/s); display conversion happens in NewView.
type WeatherRecord struct {
	Location         Location `json:"location"`
	DisplayName      string   `json:"displayName"`
	TemperatureC     float64  `json:"temperatureC"`
	FeelsLikeC       float64  `json:"feelsLikeC"`
	HumidityPct      float64  `json:"humidityPct"`
	ConditionText    string   `json:"conditionText"`
	IconCode         string   `json:"iconCode"`
	UTCOffsetSeconds int      `json:"utcOffsetSeconds"`
	WindSpeedMs      float64  `json:"windSpeedMs"`
	WindDirectionDeg float64  `json:"windDirectionDeg"`
}

// ForecastReading is one entry of the provider's multi-point forecast feed.
type ForecastReading struct {
	Timestamp    string // "YYYY-MM-DD HH:MM:SS"
	TemperatureC float64
	IconCode     string
}

// ForecastDay is the representative reading for one calendar date.
// ReadingC is the unrounded source value that TemperatureC was rounded from.
type ForecastDay struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	TemperatureC int     `json:"temperatureC"`
	ReadingC     float64 `json:"readingC"`
	IconCode     string  `json:"iconCode"`
}

// ComparisonKind classifies today against the historical mean.
type ComparisonKind string

const (
	Typical ComparisonKind = "typical"
	Warmer  ComparisonKind = "warmer"
	Colder  ComparisonKind = "colder"
)

// Comparison is the degree-day comparison in display units.
type Comparison struct {
	Kind      ComparisonKind `json:"kind"`
	Magnitude float64        `json:"magnitude"`
	Average   float64        `json:"average"`
	Unit      string         `json:"unit"`
}

// LocationSource tells the caller where the location used for a view came from.
type LocationSource string

const (
	SourceRequested LocationSource = "requested"
	SourceDetected  LocationSource = "detected"
	SourceDefault   LocationSource = "default"
)

// CurrentView is WeatherRecord converted to display units.
type CurrentView struct {
	DisplayName      string    `json:"displayName"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Temperature      float64   `json:"temperature"`
	FeelsLike        float64   `json:"feelsLike"`
	TemperatureUnit  string    `json:"temperatureUnit"`
	HumidityPct      float64   `json:"humidityPct"`
	Condition        string    `json:"condition"`
	IconCode         string    `json:"iconCode"`
	IconURL          string    `json:"iconUrl"`
	Emoji            string    `json:"emoji"`
	WindSpeed        float64   `json:"windSpeed"`
	WindSpeedUnit    string    `json:"windSpeedUnit"`
	WindDirectionDeg float64   `json:"windDirectionDeg"`
	WindDirection    string    `json:"windDirection"`
	UTCOffsetSeconds int       `json:"utcOffsetSeconds"`
	Timezone         string    `json:"timezone,omitempty"`
	LocalTime        time.Time `json:"localTime"`
}

// ForecastDayView is a ForecastDay in display units.
type ForecastDayView struct {
	Date        string `json:"date"`
	Temperature int    `json:"temperature"`
	IconCode    string `json:"iconCode"`
	Emoji       string `json:"emoji"`
}

// View is the single payload handed to the presentation layer.
type View struct {
	RequestID      string            `json:"requestId,omitempty"`
	Query          string            `json:"query"`
	LocationSource LocationSource    `json:"locationSource"`
	Units          units.System      `json:"units"`
	Current        CurrentView       `json:"current"`
	Forecast       []ForecastDayView `json:"forecast,omitempty"`
	Comparison     *Comparison       `json:"comparison,omitempty"`
	Warnings       []Warning         `json:"warnings,omitempty"`
	FetchedAt      time.Time         `json:"fetchedAt"`
}

// ComparisonAvailable reports whether the historical comparison section can be shown.
func (v *View) ComparisonAvailable() bool {
	return v.Comparison != nil
}

// clone copies the view deeply enough that the copy shares no slice or
// pointer with v.
func (v *View) clone() *View {
	c := *v
	c.Forecast = slices.Clone(v.Forecast)
	c.Warnings = slices.Clone(v.Warnings)
	if v.Comparison != nil {
		comparison := *v.Comparison
		c.Comparison = &comparison
	}
	return &c
}

// NewView converts the canonical data into display units. A nil historical
// average leaves the comparison absent.
func NewView(record WeatherRecord, days []ForecastDay, historicalAvgC *float64, u units.System, now time.Time) *View {
	if !u.Valid() {
		u = units.Metric
	}

	current := CurrentView{
		DisplayName:      record.DisplayName,
		Latitude:         record.Location.Latitude,
		Longitude:        record.Location.Longitude,
		Temperature:      units.Temperature(record.TemperatureC, u),
		FeelsLike:        units.Temperature(record.FeelsLikeC, u),
		TemperatureUnit:  u.TemperatureSymbol(),
		HumidityPct:      record.HumidityPct,
		Condition:        record.ConditionText,
		IconCode:         record.IconCode,
		IconURL:          IconURL(record.IconCode),
		Emoji:            IconEmoji(record.IconCode),
		WindSpeed:        units.WindSpeed(record.WindSpeedMs, u),
		WindSpeedUnit:    u.WindSpeedUnit(),
		WindDirectionDeg: record.WindDirectionDeg,
		WindDirection:    units.CompassPoint(record.WindDirectionDeg),
		UTCOffsetSeconds: record.UTCOffsetSeconds,
		LocalTime:        LocalTime(now, record.UTCOffsetSeconds),
	}

	view := &View{
		Units:     u,
		Current:   current,
		FetchedAt: now.UTC(),
	}

	if len(days) > 0 {
		view.Forecast = make([]ForecastDayView, 0, len(days))
		for _, d := range days {
			temp := d.TemperatureC
			if u == units.Imperial {
				temp = roundToInt(units.CelsiusToFahrenheit(d.ReadingC))
			}
			view.Forecast = append(view.Forecast, ForecastDayView{
				Date:        d.Date,
				Temperature: temp,
				IconCode:    d.IconCode,
				Emoji:       IconEmoji(d.IconCode),
			})
		}
	}

	if historicalAvgC != nil {
		c := Compare(current.Temperature, *historicalAvgC, u)
		view.Comparison = &c
	}

	return view
}

// LocalTime returns now shifted into a fixed UTC offset.
func LocalTime(now time.Time, offsetSeconds int) time.Time {
	name := "UTC"
	if offsetSeconds != 0 {
		sign := "+"
		off := offsetSeconds
		if off < 0 {
			sign = "-"
			off = -off
		}
		name = fmt.Sprintf("UTC%s%02d:%02d", sign, off/3600, (off%3600)/60)
	}
	return now.In(time.FixedZone(name, offsetSeconds))
}

// cacheKey identifies a view by the resolved query and unit system.
func cacheKey(location string, u units.System) string {
	return strings.ToLower(strings.TrimSpace(location)) + "|" + string(u)
}
