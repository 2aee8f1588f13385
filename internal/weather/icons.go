package weather

import "strings"

const defaultEmoji = "🌡️"

var iconEmoji = map[string]string{
	"01": "☀️",
	"02": "🌤️",
	"03": "☁️",
	"04": "☁️",
	"09": "🌧️",
	"10": "🌧️",
	"11": "⛈️",
	"13": "❄️",
	"50": "🌫️",
}

// IconEmoji maps a provider icon code such as "10n" to an emoji using its
// two-digit family prefix.
func IconEmoji(code string) string {
	if len(code) < 2 {
		return defaultEmoji
	}
	if e, ok := iconEmoji[code[:2]]; ok {
		return e
	}
	return defaultEmoji
}

// IconURL returns the provider-hosted image for an icon code.
func IconURL(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return "https://openweathermap.org/img/wn/" + code + "@2x.png"
}
