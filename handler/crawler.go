package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/common/utils"
	"github.com/LexiconIndonesia/news-portal-crawler/crawlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// CrawlRunner starts crawls. *crawlers.Service implements it.
type CrawlRunner interface {
	RunAll(ctx context.Context, req models.CrawlRequest) ([]models.PortalRun, error)
	Enqueue(ctx context.Context, req models.CrawlRequest) ([]models.QueuedRun, error)
}

type CrawlerHandler struct {
	runner   CrawlRunner
	router   *chi.Mux
	validate *validator.Validate
}

func NewCrawlerHandler(runner CrawlRunner) *CrawlerHandler {
	router := chi.NewRouter()

	h := &CrawlerHandler{
		runner:   runner,
		router:   router,
		validate: validator.New(),
	}

	router.Post("/", h.handleEnqueueCrawl)
	router.Post("/sync", h.handleRunCrawl)
	return h
}

func (h *CrawlerHandler) Router() *chi.Mux {
	return h.router
}

func (h *CrawlerHandler) decode(w http.ResponseWriter, r *http.Request) (models.CrawlRequest, bool) {
	var req models.CrawlRequest
	// an empty body crawls every portal with the configured defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

// handleEnqueueCrawl queues one job per portal and returns their ids.
func (h *CrawlerHandler) handleEnqueueCrawl(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	queued, err := h.runner.Enqueue(r.Context(), req)
	if err != nil {
		writeCrawlError(w, err, "Failed to queue crawl")
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, queued)
}

// handleRunCrawl runs the crawl in the request and answers with the results.
func (h *CrawlerHandler) handleRunCrawl(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	runs, err := h.runner.RunAll(r.Context(), req)
	if err != nil && len(runs) == 0 {
		writeCrawlError(w, err, "Failed to run crawl")
		return
	}
	utils.WriteJSON(w, http.StatusOK, runs)
}

func writeCrawlError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, crawler.ErrUnknownPortal):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, crawlers.ErrNoPublisher):
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		utils.WriteError(w, http.StatusInternalServerError, msg)
	}
}
