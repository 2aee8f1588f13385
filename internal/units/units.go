package units

import (
	"math"
	"strings"
)

// System is the unit system a reading is displayed in.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

const (
	msToKmh = 3.6
	msToMph = 2.2369362920544
)

// ParseSystem resolves s to Metric or Imperial. Anything that is not
// recognisably imperial resolves to Metric.
func ParseSystem(s string) System {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "imperial", "i", "f", "fahrenheit":
		return Imperial
	default:
		return Metric
	}
}

// Valid reports whether s is exactly one of the two known systems.
func (s System) Valid() bool {
	return s == Metric || s == Imperial
}

// TemperatureSymbol returns the degree label for the system.
func (s System) TemperatureSymbol() string {
	if s == Imperial {
		return "°F"
	}
	return "°C"
}

// WindSpeedUnit returns the wind speed label for the system.
func (s System) WindSpeedUnit() string {
	if s == Imperial {
		return "mph"
	}
	return "km/h"
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// MsToKmh converts metres per second to kilometres per hour.
func MsToKmh(ms float64) float64 {
	return ms * msToKmh
}

func MsToMph(ms float64) float64 {
	return ms * msToMph
}

func MphToMs(mph float64) float64 {
	return mph / msToMph
}

// Temperature converts a canonical °C value into the given system.
func Temperature(celsius float64, s System) float64 {
	if s == Imperial {
		return CelsiusToFahrenheit(celsius)
	}
	return celsius
}

// WindSpeed converts a canonical m/s value into km/h (metric) or mph (imperial).
func WindSpeed(ms float64, s System) float64 {
	if s == Imperial {
		return MsToMph(ms)
	}
	return MsToKmh(ms)
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassPoint maps a bearing in degrees to one of eight compass points.
// Bearings wrap, so 360 and 0 are both "N".
func CompassPoint(deg float64) string {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	idx := int(math.Floor(d/45+0.5)) % 8
	return compassPoints[idx]
}
