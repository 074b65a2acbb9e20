package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-station/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey     string  `validate:"required"`
	OpenWeatherLocationID string  `validate:"required,numeric"`
	OpenWeatherLanguage   string  `validate:"required,min=2,max=5"`
	OpenWeatherRPS        float64 `validate:"gte=0"`
	DisplayedLocationName string

	// IsMetric selects °C and m/s instead of °F and mph.
	IsMetric bool
	// DateTimeFormatUS renders "08/23/2022 02:55 pm" instead of "23.08.2022 14:55".
	DateTimeFormatUS bool

	Timezone string         `validate:"required"`
	Location *time.Location `validate:"-"`

	// UpdateInterval controls how often the whole screen is refreshed.
	UpdateInterval time.Duration `validate:"gt=0"`
	// ClockInterval controls how often the clock region is checked.
	ClockInterval time.Duration `validate:"gt=0"`

	ForecastHoursUTC []int `validate:"min=1,dive,gte=0,lte=23"`

	NTPServer   string        `validate:"required,hostname_rfc1123|ip"`
	NTPTimeout  time.Duration `validate:"gt=0"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	AssetsDir   string `validate:"required"`
	FramePath   string
	ArchivePath string // empty disables the snapshot archive

	DisplayWidth  int `validate:"gte=120"`
	DisplayHeight int `validate:"gte=160"`

	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherLocationID = os.Getenv("OPENWEATHER_LOCATION_ID")
	cfg.OpenWeatherLanguage = getenvDefault("OPENWEATHER_LANGUAGE", "en")
	cfg.DisplayedLocationName = os.Getenv("DISPLAYED_LOCATION_NAME")
	cfg.IsMetric = getenvBool("IS_METRIC", true)
	cfg.DateTimeFormatUS = getenvBool("DATE_TIME_FORMAT_US", false)

	rps, err := strconv.ParseFloat(getenvDefault("OPENWEATHER_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENWEATHER_RPS: %w", err)
	}
	cfg.OpenWeatherRPS = rps

	cfg.Timezone = getenvDefault("TIMEZONE", "Europe/Kyiv")
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"UPDATE_INTERVAL", "10m", &cfg.UpdateInterval},
		{"CLOCK_INTERVAL", "30s", &cfg.ClockInterval},
		{"NTP_TIMEOUT", "5s", &cfg.NTPTimeout},
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	hours, err := parseHours(os.Getenv("FORECAST_HOURS_UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_HOURS_UTC: %w", err)
	}
	cfg.ForecastHoursUTC = hours

	cfg.NTPServer = getenvDefault("NTP_SERVER", "pool.ntp.org")
	cfg.AssetsDir = getenvDefault("ASSETS_DIR", "assets")
	cfg.FramePath = getenvDefault("FRAME_PATH", "frame.png")
	cfg.ArchivePath = getenvDefault("ARCHIVE_PATH", "weather-station.db")
	cfg.DisplayWidth = getenvInt("DISPLAY_WIDTH", 240)
	cfg.DisplayHeight = getenvInt("DISPLAY_HEIGHT", 320)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func parseHours(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return append([]int(nil), weather.DefaultForecastHoursUTC...), nil
	}
	var hours []int
	for _, part := range strings.Split(s, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
