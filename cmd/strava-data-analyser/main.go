package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manol-dimitrov/strava-data-analyser/internal/config"
	"github.com/manol-dimitrov/strava-data-analyser/internal/domain"
	"github.com/manol-dimitrov/strava-data-analyser/internal/httpapi"
	"github.com/manol-dimitrov/strava-data-analyser/internal/strava"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	programLevel := slog.LevelInfo
	if cfg.Debug {
		programLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	h := strava.NewHTTPClient(strava.HTTPOptions{
		Timeout:  cfg.HTTPTimeout,
		RetryMax: cfg.HTTPRetryMax,
		Logger:   logger,
	})

	ex, err := strava.NewExchanger(cfg.Credentials(),
		strava.WithTokenURL(cfg.Strava.TokenURL),
		strava.WithExchangeHTTPClient(h),
		strava.WithExchangeLogger(logger),
	)
	if err != nil {
		return err
	}
	session := strava.NewSession(ex)

	// No API call is made unless the startup exchange succeeds.
	startCtx, cancel := context.WithTimeout(context.Background(), cfg.StartupTimeout)
	_, err = session.Current(startCtx)
	cancel()
	if err != nil {
		return err
	}

	client := strava.NewWithTokenSource(session,
		strava.WithBaseURL(cfg.Strava.APIBaseURL),
		strava.WithHTTPClient(h),
		strava.WithLocation(loc),
		strava.WithLogger(logger),
	)

	var feed httpapi.ActivityFeed
	if cfg.ActivityFeedURL != "" {
		svc, err := domain.NewService(cfg.ActivityFeedURL, h, logger)
		if err != nil {
			return err
		}
		feed = svc
	}

	app := httpapi.NewServer(client, feed, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
