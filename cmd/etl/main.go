package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/lagoon-weather-risk/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/lagoon-weather-risk/internal/adapter/kafka"
	"github.com/couchcryptid/lagoon-weather-risk/internal/adapter/sqlite"
	"github.com/couchcryptid/lagoon-weather-risk/internal/config"
	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
	"github.com/couchcryptid/lagoon-weather-risk/internal/observability"
	"github.com/couchcryptid/lagoon-weather-risk/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	engine := domain.NewEngine(cfg.Engine, domain.NewChooser(cfg.PhraseMode))
	transformer := pipeline.NewCachingTransformer(
		pipeline.NewTransformer(engine, cfg.Timezone, logger),
		cfg.AssessCacheSize,
		metrics,
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	loaders := pipeline.MultiLoader{writer}

	// Optional assessment archive (SQLITE_PATH).
	api := httpadapter.API{
		Assessor:  transformer,
		RateLimit: cfg.AssessRateLimit,
		RateBurst: cfg.AssessRateBurst,
		Metrics:   metrics,
	}
	var archive *sqlite.Archive
	if cfg.SQLitePath != "" {
		archive, err = sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("failed to open assessment archive", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		loaders = append(loaders, archive)
		api.Archive = archive
		logger.Info("assessment archive enabled", "path", cfg.SQLitePath)
	} else {
		logger.Info("assessment archive disabled")
	}

	p := pipeline.New(reader, transformer, loaders, logger, metrics, cfg.BatchSize)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, api, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return p.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			logger.Error("archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
