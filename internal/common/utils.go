package common

import "strings"

// placeholderMarkers are fragments found in sample API keys copied from docs.
var placeholderMarkers = []string{"PASTE_YOUR", "YOUR_API_KEY", "YOUR_KEY_HERE"}

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether value is empty or an obvious sample value.
func IsPlaceholder(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	return v == "" || HasAny(v, placeholderMarkers...)
}
