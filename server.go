package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/config"
	"github.com/LexiconIndonesia/news-portal-crawler/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// serverDeps are the handlers' collaborators, built in main.
type serverDeps struct {
	crawls  handler.CrawlRunner
	jobs    *handler.WorkManagerHandler
	healthz map[string]handler.HealthCheck
}

type AppHttpServer struct {
	router *chi.Mux
	cfg    config.Config
	server *http.Server
	deps   serverDeps
}

// requestTimeout leaves room for a synchronous crawl to use its whole budget.
func requestTimeout(cfg config.Config) time.Duration {
	return max(2*time.Minute, cfg.Crawl.TimeBudget+time.Minute)
}

func NewAppHttpServer(cfg config.Config, deps serverDeps) (*AppHttpServer, error) {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout(cfg)))

	server := &AppHttpServer{
		router: r,
		cfg:    cfg,
		deps:   deps,
	}
	return server, nil
}

func (s *AppHttpServer) setupRoute() {
	r := s.router

	healthHandler := handler.NewHealthHandler(s.deps.healthz)
	r.Mount("/health", healthHandler.Router())

	r.Route("/v1", func(r chi.Router) {
		crawlerHandler := handler.NewCrawlerHandler(s.deps.crawls)
		portalHandler := handler.NewPortalHandler()

		r.Mount("/crawls", crawlerHandler.Router())
		r.Mount("/portals", portalHandler.Router())
		r.Mount("/works", s.deps.jobs.Router())
		r.Mount("/health", healthHandler.Router())
	})
}

func (s *AppHttpServer) start() error {
	r := s.router
	cfg := s.cfg
	log.Info().Msg("Starting up server...")

	s.server = &http.Server{
		Addr:         cfg.Listen.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout(cfg) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// stop gracefully shuts down the server
func (s *AppHttpServer) stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
