package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/temptrack/internal/weather"
)

// renderText prints the view the way the terminal user reads it.
func renderText(w io.Writer, v *weather.View) {
	c := v.Current

	fmt.Fprintf(w, "%s %s\n", c.Emoji, c.DisplayName)
	if v.LocationSource == weather.SourceDetected {
		fmt.Fprintln(w, "(location detected from your IP address)")
	}
	if c.Condition != "" {
		fmt.Fprintln(w, c.Condition)
	}
	fmt.Fprintf(w, "Temperature: %.1f%s (feels like %.1f%s)\n", c.Temperature, c.TemperatureUnit, c.FeelsLike, c.TemperatureUnit)
	fmt.Fprintf(w, "Humidity:    %.0f%%\n", c.HumidityPct)
	fmt.Fprintf(w, "Wind:        %.1f %s %s\n", c.WindSpeed, c.WindSpeedUnit, c.WindDirection)

	zone := c.LocalTime.Format("MST")
	if c.Timezone != "" {
		zone = c.Timezone
	}
	fmt.Fprintf(w, "Local time:  %s (%s)\n", c.LocalTime.Format("Mon Jan 2 15:04"), zone)
	fmt.Fprintf(w, "Your time:   %s\n", v.FetchedAt.Local().Format("Mon Jan 2 15:04"))

	if v.ComparisonAvailable() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, comparisonLine(v.Comparison))
	}

	if len(v.Forecast) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "7-day forecast:")
		for _, d := range v.Forecast {
			fmt.Fprintf(w, "  %s  %s  %d%s\n", d.Date, d.Emoji, d.Temperature, c.TemperatureUnit)
		}
	}

	if len(v.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range v.Warnings {
			fmt.Fprintf(w, "Note: %s\n", warn.Message)
		}
	}
}

func comparisonLine(c *weather.Comparison) string {
	avg := fmt.Sprintf("(10-year average: %.1f%s)", c.Average, c.Unit)
	var b strings.Builder
	switch c.Kind {
	case weather.Warmer:
		fmt.Fprintf(&b, "🔥 Today is %.1f%s warmer than usual for this date %s.", c.Magnitude, c.Unit, avg)
	case weather.Colder:
		fmt.Fprintf(&b, "❄️ Today is %.1f%s colder than usual for this date %s.", c.Magnitude, c.Unit, avg)
	default:
		fmt.Fprintf(&b, "🌤 Today's temperature is typical for this date %s.", avg)
	}
	return b.String()
}
