package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/config"
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/db"
	"github.com/LexiconIndonesia/news-portal-crawler/common/logger"
	"github.com/LexiconIndonesia/news-portal-crawler/common/messaging"
	"github.com/LexiconIndonesia/news-portal-crawler/common/services"
	"github.com/LexiconIndonesia/news-portal-crawler/common/storage"
	"github.com/LexiconIndonesia/news-portal-crawler/common/work"
	"github.com/LexiconIndonesia/news-portal-crawler/crawlers"
	"github.com/LexiconIndonesia/news-portal-crawler/handler"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

func main() {
	// INITIATE CONFIGURATION
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file, using environment variables")
	}

	cfg := config.DefaultConfig()
	cfg.LoadFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// INITIATE DATABASES
	dbConn, err := db.SetupDatabase(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup database")
	}
	defer dbConn.Close()

	logger.InitializeLogging(dbConn)
	log.Info().Msg("Zerolog database hooks initialized")

	// INITIATE NATS CLIENT
	natsClient, err := messaging.SetupNatsBroker(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup NATS client")
	}
	defer natsClient.Close()

	articles := services.NewArticleRepository(dbConn.Queries)
	keywords := services.NewKeywordRepository(dbConn.Queries)
	jobs := services.NewJobRepository(dbConn.Queries)
	works := work.NewWorkManager(dbConn.Redis, dbConn.Queries)
	logService := logger.NewLogService(dbConn.Queries)

	var hooks []crawler.SaveHook
	if cfg.GCS.Enabled() {
		gcsStorage, err := storage.NewGCSStorage(ctx, cfg.GCS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to setup GCS storage")
		}
		defer gcsStorage.Close()
		hooks = append(hooks, crawlers.NewArchiveHook(storage.NewArchiver(gcsStorage, cfg.GCS.Bucket)))
	}
	hooks = append(hooks, crawlers.NewPublishHook(natsClient, cfg.GCS.Enabled()))

	opts := []crawlers.ServiceOption{
		crawlers.WithLogService(logService),
		crawlers.WithSaveHooks(hooks...),
	}
	if cfg.Nats.JetStreamEnabled {
		opts = append(opts, crawlers.WithPublisher(natsClient))
	}
	svc := crawlers.NewService(cfg, articles, keywords, works, opts...)
	log.Info().Strs("portals", crawler.PortalNames()).Msg("Portals registered")

	var consumer jetstream.ConsumeContext
	if cfg.Nats.JetStreamEnabled {
		consumer, err = svc.StartCrawlConsumer(ctx, natsClient)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start crawl consumer")
		}
	} else {
		log.Warn().Msg("JetStream disabled, asynchronous crawls are unavailable")
	}

	// INITIATE SERVER
	server, err := NewAppHttpServer(cfg, serverDeps{
		crawls: svc,
		jobs:   handler.NewWorkManagerHandler(jobs, logService, works),
		healthz: map[string]handler.HealthCheck{
			"database": dbConn.Ping,
			"redis": func(ctx context.Context) error {
				return dbConn.Redis.GetClient().Ping(ctx).Err()
			},
			"nats": natsClient.Ping,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create the server")
	}

	server.setupRoute()

	go func() {
		if err := server.start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			cancel()
		}
	}()

	log.Info().Str("address", cfg.Listen.Addr()).Msg("Server started successfully")

	select {
	case <-shutdown:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
	}

	if consumer != nil {
		consumer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server gracefully stopped")
}
