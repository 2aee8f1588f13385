package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/i474232898/temptrack/internal/config"
	"github.com/i474232898/temptrack/internal/settings"
	"github.com/i474232898/temptrack/internal/store"
	"github.com/i474232898/temptrack/internal/timezone"
	"github.com/i474232898/temptrack/internal/units"
	"github.com/i474232898/temptrack/internal/weather"
	"github.com/i474232898/temptrack/internal/weather/providers"
)

const usage = `Usage:
  temptrack [flags]          show the weather once
  temptrack serve [flags]    start the HTTP API

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	fs := pflag.NewFlagSet("temptrack", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.StringP("config", "c", "", "path to a config file (default: config.yaml search)")
	location := fs.StringP("location", "l", "", `location such as "Mississauga" or "Lod,IL" (default: detected, then saved)`)
	unitFlag := fs.StringP("units", "u", "", "metric or imperial (default: saved preference)")
	asJSON := fs.Bool("json", false, "print the view as JSON")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := cfg.NewLogger()

	service := newService(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serve {
		if err := runServer(ctx, cfg, service, logger); err != nil {
			logger.Error("server failed", "error", err)
			return 1
		}
		return 0
	}

	var u units.System
	if *unitFlag != "" {
		u = units.ParseSystem(*unitFlag)
	}

	view, err := service.GetView(ctx, *location, u)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", weather.UserMessage(err))
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			logger.Error("failed to encode view", "error", err)
			return 1
		}
		return 0
	}

	renderText(stdout, view)
	return 0
}

// newService wires the providers, preference store, cache and timezone
// finder into a weather.Service.
func newService(cfg *config.Config, logger *slog.Logger) *weather.Service {
	prefs := settings.NewStore(cfg.Settings.Path, settings.Preferences{
		DefaultCity: cfg.Settings.DefaultCity,
		Units:       units.ParseSystem(cfg.Settings.DefaultUnits),
	}, logger)

	openWeather := providers.NewOpenWeatherProvider(cfg.OpenWeather.BaseURL, cfg.OpenWeather.APIKey, cfg.OpenWeather.Timeout, logger)

	provs := weather.Providers{
		Current:  openWeather,
		Forecast: openWeather,
		History:  providers.NewOpenMeteoProvider(cfg.Archive.BaseURL, cfg.Archive.Timeout, logger),
	}
	if cfg.Geolocation.Enabled {
		provs.Locator = providers.NewIPGeolocator(cfg.Geolocation.URL, cfg.Geolocation.Timeout, logger)
	}
	if finder, err := timezone.NewFinder(); err != nil {
		logger.Warn("timezone lookup disabled", "error", err)
	} else {
		provs.Timezone = finder
	}

	return weather.NewService(provs, prefs, store.NewViewCache(cfg.Cache.TTL), logger)
}
