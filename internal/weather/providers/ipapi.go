package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultGeolocationURL is the ip-api endpoint that resolves the caller's
// public IP to a city.
const DefaultGeolocationURL = "http://ip-api.com/json"

// IPGeolocator detects the caller's approximate city from its public IP.
type IPGeolocator struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

type ipAPIResponse struct {
	Status      string `json:"status"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

// NewIPGeolocator creates a locator with a timeout clamped to 5s and no
// retries.
func NewIPGeolocator(url string, timeout time.Duration, logger *slog.Logger) *IPGeolocator {
	if url == "" {
		url = DefaultGeolocationURL
	}
	client := resty.New().
		SetTimeout(clampTimeout(timeout, MaxGeolocationTimeout)).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &IPGeolocator{
		client: client,
		url:    url,
		logger: logger.With("component", "geolocator"),
	}
}

// DetectLocation returns "City,CC", or the city alone when the country code
// is missing. Every failure reports false.
func (g *IPGeolocator) DetectLocation(ctx context.Context) (string, bool) {
	var result ipAPIResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(g.url)
	if err != nil {
		g.logger.Debug("geolocation request failed", "error", err)
		return "", false
	}
	if !resp.IsSuccess() {
		g.logger.Debug("geolocation returned error status", "status_code", resp.StatusCode())
		return "", false
	}
	if result.Status != "success" || result.City == "" {
		g.logger.Debug("geolocation lookup unsuccessful", "status", result.Status)
		return "", false
	}

	if result.CountryCode != "" {
		return result.City + "," + result.CountryCode, true
	}
	return result.City, true
}
