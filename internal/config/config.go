package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/temptrack/internal/common"
	"github.com/i474232898/temptrack/internal/weather"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Settings    SettingsConfig    `mapstructure:"settings"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SettingsConfig locates the preferences file and its first-run values.
type SettingsConfig struct {
	Path         string `mapstructure:"path" validate:"required"`
	DefaultCity  string `mapstructure:"defaultCity" validate:"required"`
	DefaultUnits string `mapstructure:"defaultUnits" validate:"oneof=metric imperial"`
}

type OpenWeatherConfig struct {
	APIKey  string        `mapstructure:"apiKey"`
	BaseURL string        `mapstructure:"baseURL" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ArchiveConfig struct {
	BaseURL string        `mapstructure:"baseURL" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type GeolocationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

var validate = validator.New()

// Load reads .env, then configFile (or config.yaml from the search paths when
// empty), then TEMPTRACK_* environment variables. Invalid values and a
// missing or placeholder API key are reported as *weather.ConfigError.
func Load(configFile string) (*Config, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.temptrack")
	}

	setDefaults(v)

	v.SetEnvPrefix("TEMPTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openweather.apiKey", "TEMPTRACK_OPENWEATHER_APIKEY", "OPENWEATHER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("settings.path", "settings.json")
	v.SetDefault("settings.defaultCity", "Mississauga")
	v.SetDefault("settings.defaultUnits", "metric")
	v.SetDefault("openweather.apiKey", "")
	v.SetDefault("openweather.baseURL", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.timeout", "20s")
	v.SetDefault("archive.baseURL", "https://archive-api.open-meteo.com/v1/archive")
	v.SetDefault("archive.timeout", "20s")
	v.SetDefault("geolocation.enabled", true)
	v.SetDefault("geolocation.url", "http://ip-api.com/json")
	v.SetDefault("geolocation.timeout", "5s")
	v.SetDefault("cache.ttl", "10m")
}

// Validate checks struct tags and the API key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &weather.ConfigError{
				Field:  fe.Namespace(),
				Reason: fmt.Sprintf("failed %q validation (value %v)", fe.Tag(), fe.Value()),
			}
		}
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if common.IsPlaceholder(c.OpenWeather.APIKey) {
		return &weather.ConfigError{
			Field:  "openweather.apiKey",
			Reason: "set TEMPTRACK_OPENWEATHER_APIKEY (or OPENWEATHER_API_KEY) to a real OpenWeatherMap key",
		}
	}

	return nil
}

// GetServerAddr returns the server address in the format ":port".
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// NewLogger creates a logger writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
