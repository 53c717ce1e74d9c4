package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"attractions/internal/config"
	"attractions/internal/dataset"
	"attractions/internal/diagnostics"
	"attractions/internal/env"
	"attractions/internal/logging"
	"attractions/internal/mapview"
	"attractions/internal/page"
	"attractions/internal/storage"
	"attractions/internal/web"
	"attractions/pkg/graceful"
	"attractions/pkg/kafkaclient"

	"github.com/rs/zerolog"
)

func main() {
	log := logging.New(os.Stderr, "info", "console")
	env.LoadEnv(log)

	cfg, err := config.Load(os.Getenv("ATTRACTIONS_CONFIG_DIR"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	var publisher diagnostics.Publisher
	if cfg.Kafka.Enabled {
		producer := kafkaclient.NewProducer(cfg.Kafka.Topic, cfg.Kafka.Broker, log)
		defer producer.Close()
		publisher = producer
		log.Info().Str("broker", cfg.Kafka.Broker).Str("topic", cfg.Kafka.Topic).Msg("Publishing diagnostics to Kafka")
	}
	reporter := diagnostics.NewLogReporter(log, publisher)

	source, closeSource, err := newSource(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure dataset source")
	}
	defer closeSource()

	controller := page.NewController(reporter, log)
	go func() {
		// LoadFailed is reported through the diagnostics reporter.
		_ = controller.Start(ctx, dataset.NewLoader(source, log))
	}()

	settings := mapview.DefaultSettings()
	settings.TileURL = cfg.Map.TileURL
	settings.Attribution = cfg.Map.Attribution
	settings.MaxZoom = cfg.Map.MaxZoom

	limiter := web.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           web.NewServer(controller, settings, reporter, limiter, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("Serving attractions")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}

// newSource builds the dataset source named by the config. The returned
// func releases any connection it opened.
func newSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (dataset.Source, func(), error) {
	noop := func() {}
	switch cfg.Dataset.Source {
	case config.SourceHTTP:
		// No client timeout: the fetch ends only when ctx is canceled.
		return dataset.HTTPSource{BaseURL: cfg.Dataset.BaseURL, Client: &http.Client{}}, noop, nil
	case config.SourceS3:
		s3, err := storage.NewS3Service(storage.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return dataset.S3Source{Store: s3, Bucket: cfg.S3.Bucket, Key: cfg.S3.Object, StatusOf: storage.StatusCode}, noop, nil
	case config.SourcePostgres:
		pg, pool, err := storage.NewPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.Table, log)
		if err != nil {
			return nil, noop, err
		}
		return dataset.PostgresSource{Reader: pg, Table: cfg.Postgres.Table}, pool.Close, nil
	default:
		return dataset.FileSource{Path: cfg.Dataset.Path}, noop, nil
	}
}
