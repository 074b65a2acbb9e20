package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/weather-station/internal/api/http"
	"github.com/i474232898/weather-station/internal/config"
	"github.com/i474232898/weather-station/internal/display"
	"github.com/i474232898/weather-station/internal/render"
	"github.com/i474232898/weather-station/internal/scheduler"
	"github.com/i474232898/weather-station/internal/store"
	"github.com/i474232898/weather-station/internal/timesync"
	"github.com/i474232898/weather-station/internal/weather"
	"github.com/i474232898/weather-station/internal/weather/providers"
)

const openWeatherHost = "api.openweathermap.org:443"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	sampleStore := store.NewSampleStore()

	// Last good data from a previous run, shown until the first fetch succeeds.
	opts := render.Options{Location: cfg.Location, Metric: cfg.IsMetric}
	if cfg.ArchivePath != "" {
		archive, err := store.OpenArchive(cfg.ArchivePath)
		if err != nil {
			sugar.Warnw("snapshot archive unavailable", "path", cfg.ArchivePath, "error", err)
		} else {
			defer archive.Close()
			opts.Archive = archive

			snap, err := archive.Load(ctx)
			switch {
			case err == nil:
				sampleStore.Restore(snap)
				sugar.Infow("restored archived snapshot",
					"currentAt", snap.CurrentAt,
					"forecastsAt", snap.ForecastsAt,
					"hasForecasts", sampleStore.HasForecasts())
			case !errors.Is(err, store.ErrNotFound):
				sugar.Warnw("failed to load archived snapshot", "error", err)
			}
		}
	}

	owm := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherOptions{
		APIKey:            cfg.OpenWeatherAPIKey,
		Language:          cfg.OpenWeatherLanguage,
		Metric:            cfg.IsMetric,
		RequestsPerSecond: cfg.OpenWeatherRPS,
	})
	service := weather.NewService(sampleStore, owm, owm, cfg.OpenWeatherLocationID, cfg.ForecastHoursUTC, sugar)

	clock := timesync.NewClock(cfg.NTPServer, cfg.NTPTimeout, cfg.Location, sugar)
	surface := display.NewImageSurface(cfg.DisplayWidth, cfg.DisplayHeight,
		display.NewAssetResolver(cfg.AssetsDir), cfg.FramePath, sugar)

	format := render.FormatEU
	if cfg.DateTimeFormatUS {
		format = render.FormatUS
	}
	face := render.NewClockFace(surface, format)
	link := render.DialLink{Addr: openWeatherHost, Timeout: cfg.HTTPTimeout}
	coordinator := render.NewCoordinator(surface, link, clock, service, face, opts, sugar)

	sched := scheduler.New(coordinator, face, clock, scheduler.Config{
		UpdateInterval: cfg.UpdateInterval,
		ClockInterval:  cfg.ClockInterval,
		Location:       cfg.Location,
	}, sugar)
	if err := sched.Start(ctx); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-station",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-station",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Refresh:      sched,
		Weather:      service,
		Frames:       surface,
		Location:     cfg.Location,
		LocationName: cfg.DisplayedLocationName,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Infow("fiber server stopped", "error", err)
		}
	}()

	sugar.Infow("weather station running",
		"location", cfg.OpenWeatherLocationID,
		"timezone", cfg.Timezone,
		"port", cfg.Port)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Warnw("error during shutdown", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
