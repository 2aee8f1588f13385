package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/temptrack/internal/settings"
	"github.com/i474232898/temptrack/internal/units"
)

// ErrNoLocation is returned when no location was given, none could be
// detected and none is stored.
var ErrNoLocation = errors.New("no location given and no default stored")

// Providers groups the upstream clients the service sequences.
type Providers struct {
	Current  CurrentProvider
	Forecast ForecastProvider
	History  HistoryProvider
	Locator  Locator
	Timezone TimezoneService
}

// Service orchestrates a single weather interaction: resolve the location,
// fetch current conditions, then forecast and history concurrently.
type Service struct {
	providers Providers
	prefs     PreferencesStore
	cache     ViewCache
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new Service. cache may be nil to disable memoization;
// Locator and Timezone may be nil.
func NewService(providers Providers, prefs PreferencesStore, cache ViewCache, logger *slog.Logger) *Service {
	return &Service{
		providers: providers,
		prefs:     prefs,
		cache:     cache,
		logger:    logger.With("component", "weather-service"),
		now:       time.Now,
	}
}

// Preferences returns the stored preferences.
func (s *Service) Preferences() settings.Preferences {
	return s.prefs.Load()
}

// Refresh drops the memoized view so the next GetView goes upstream.
func (s *Service) Refresh() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

// GetView builds the presentation payload for requestedLocation. An empty
// location falls back to IP detection and then to the stored default. An
// invalid unit system falls back to the stored one. Only a failure of the
// current-conditions provider is returned as an error; a missing forecast
// or history is reported through View.Warnings.
func (s *Service) GetView(ctx context.Context, requestedLocation string, u units.System) (*View, error) {
	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	prefs := s.prefs.Load()
	if !u.Valid() {
		u = prefs.Units
	}

	query, source := s.resolveQuery(ctx, logger, requestedLocation, prefs)
	if query == "" {
		return nil, ErrNoLocation
	}

	logger.Debug("resolved location", "query", query, "source", source, "units", u)

	key := cacheKey(query, u)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			logger.Debug("serving cached view", "query", query, "units", u)
			view := cached.clone()
			view.RequestID = requestID
			view.LocationSource = source
			view.Current.LocalTime = LocalTime(s.now(), view.Current.UTCOffsetSeconds)
			s.remember(logger, prefs, query, u)
			return view, nil
		}
	}

	record, err := s.providers.Current.FetchCurrent(ctx, query, u)
	if err != nil {
		logger.Error("failed to get current conditions", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get current conditions for %q: %w", query, err)
	}
	if err := record.Location.Validate(); err != nil {
		logger.Error("current conditions returned invalid coordinates", "query", query, "error", err)
		return nil, NewProviderError("current conditions", 0, "", err)
	}

	days, avg, warnings := s.fetchSupplementary(ctx, logger, record.Location)

	view := NewView(record, days, avg, u, s.now())
	view.RequestID = requestID
	view.Query = query
	view.LocationSource = source
	view.Warnings = warnings
	view.Current.Timezone = s.lookupTimezone(logger, record.Location)

	if s.cache != nil {
		s.cache.Set(key, view.clone())
	}
	s.remember(logger, prefs, query, u)

	logger.Info("weather view ready",
		"location", record.DisplayName,
		"units", u,
		"forecast_days", len(view.Forecast),
		"comparison", view.ComparisonAvailable(),
	)

	return view, nil
}

func (s *Service) resolveQuery(ctx context.Context, logger *slog.Logger, requested string, prefs settings.Preferences) (string, LocationSource) {
	if q := strings.TrimSpace(requested); q != "" {
		return q, SourceRequested
	}

	if s.providers.Locator != nil {
		if detected, ok := s.providers.Locator.DetectLocation(ctx); ok {
			return detected, SourceDetected
		}
		logger.Debug("location detection unavailable, using stored default", "default_city", prefs.DefaultCity)
	}

	return strings.TrimSpace(prefs.DefaultCity), SourceDefault
}

// fetchSupplementary fetches the forecast and the historical average in
// parallel. Both are optional.
func (s *Service) fetchSupplementary(ctx context.Context, logger *slog.Logger, loc Location) ([]ForecastDay, *float64, []Warning) {
	var (
		wg        sync.WaitGroup
		days      []ForecastDay
		forecast  bool
		avg       float64
		historyOK bool
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		if s.providers.Forecast != nil {
			days, forecast = s.providers.Forecast.FetchWeekly(ctx, loc.Latitude, loc.Longitude)
		}
	}()

	go func() {
		defer wg.Done()
		if s.providers.History != nil {
			avg, historyOK = s.providers.History.FetchAverage(ctx, loc.Latitude, loc.Longitude)
		}
	}()

	wg.Wait()

	var warnings []Warning
	if !forecast || len(days) == 0 {
		days = nil
		logger.Warn("forecast unavailable", "latitude", loc.Latitude, "longitude", loc.Longitude)
		warnings = append(warnings, Warning{
			Section: SectionForecast,
			Message: "Forecast is not available for this location.",
		})
	}

	var avgPtr *float64
	if historyOK {
		avgPtr = &avg
	} else {
		logger.Warn("historical average unavailable", "latitude", loc.Latitude, "longitude", loc.Longitude)
		warnings = append(warnings, Warning{
			Section: SectionHistorical,
			Message: "Historical climate data is not available for this location.",
		})
	}

	return days, avgPtr, warnings
}

func (s *Service) lookupTimezone(logger *slog.Logger, loc Location) string {
	if s.providers.Timezone == nil {
		return ""
	}
	tz, err := s.providers.Timezone.GetTimezone(loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Debug("timezone lookup failed", "latitude", loc.Latitude, "longitude", loc.Longitude, "error", err)
		return ""
	}
	return tz
}

// remember persists the latest successful interaction. Failures are logged only.
func (s *Service) remember(logger *slog.Logger, prefs settings.Preferences, query string, u units.System) {
	prefs.Remember(query)
	prefs.Units = u
	if err := s.prefs.Save(prefs); err != nil {
		logger.Warn("failed to save preferences", "error", err)
	}
}
