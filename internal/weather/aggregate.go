package weather

import "math"

// MaxForecastDays caps the weekly forecast.
const MaxForecastDays = 7

// ReduceDaily keeps the first reading seen for each calendar date, in feed
// order, stopping after maxDays distinct dates. Readings whose timestamp has
// no date part are skipped.
func ReduceDaily(readings []ForecastReading, maxDays int) []ForecastDay {
	if maxDays <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, maxDays)
	days := make([]ForecastDay, 0, maxDays)

	for _, r := range readings {
		date, ok := datePart(r.Timestamp)
		if !ok {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		days = append(days, ForecastDay{
			Date:         date,
			TemperatureC: roundToInt(r.TemperatureC),
			ReadingC:     r.TemperatureC,
			IconCode:     r.IconCode,
		})
		if len(days) == maxDays {
			break
		}
	}

	return days
}

// Mean averages values, reporting false when there are none.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func datePart(ts string) (string, bool) {
	if len(ts) < len("2006-01-02") {
		return "", false
	}
	date := ts[:10]
	if date[4] != '-' || date[7] != '-' {
		return "", false
	}
	return date, true
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}
