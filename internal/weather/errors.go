package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrorBody is how much of an upstream response body is kept on a ProviderError.
const maxErrorBody = 300

// ConfigError reports missing or invalid configuration, such as an absent API key.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ProviderError is a failed or malformed response from the current-conditions
// provider. StatusCode is zero when no HTTP response was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

// NewProviderError builds a ProviderError with body truncated for display.
func NewProviderError(provider string, statusCode int, body string, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       Truncate(body, maxErrorBody),
		Err:        err,
	}
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s request failed", e.Provider)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the provider did not recognise the location.
func (e *ProviderError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// UserMessage is a short human-readable description of a fatal error, suitable for display.
func UserMessage(err error) string {
	var cfgErr *ConfigError
	var provErr *ProviderError
	switch {
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("Weather service is not configured (%s).", cfgErr.Reason)
	case errors.As(err, &provErr) && provErr.NotFound():
		return "Location not found. Try a different spelling or add a country code, e.g. Lod,IL."
	case errors.As(err, &provErr) && provErr.StatusCode == http.StatusUnauthorized:
		return "The weather provider rejected the API key."
	case errors.As(err, &provErr):
		return "The weather provider is unavailable right now. Please try again later."
	default:
		return "Could not load the weather."
	}
}

// Section names a part of the view that may be omitted.
type Section string

const (
	SectionForecast   Section = "forecast"
	SectionHistorical Section = "historical"
)

// Warning marks a section that was left out because its data was unavailable.
type Warning struct {
	Section Section `json:"section"`
	Message string  `json:"message"`
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
