package weather

import (
	"math"

	"github.com/i474232898/temptrack/internal/units"
)

// typicalThreshold is the band, in display degrees, inside which today counts as typical.
const typicalThreshold = 1.0

// Compare classifies the current temperature, already in display units,
// against the historical mean given in °C. The mean is converted to the
// display system first so both sides share a scale.
func Compare(current, historicalAvgC float64, u units.System) Comparison {
	avg := units.Temperature(historicalAvgC, u)
	diff := current - avg

	c := Comparison{
		Average: avg,
		Unit:    u.TemperatureSymbol(),
	}

	switch {
	case math.Abs(diff) < typicalThreshold:
		c.Kind = Typical
		c.Magnitude = math.Abs(diff)
	case diff > 0:
		c.Kind = Warmer
		c.Magnitude = diff
	default:
		c.Kind = Colder
		c.Magnitude = math.Abs(diff)
	}

	return c
}
