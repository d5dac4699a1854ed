package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/common/services"
	"github.com/LexiconIndonesia/news-portal-crawler/common/utils"
	"github.com/LexiconIndonesia/news-portal-crawler/common/work"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const maxJobLogs = 500

// WorkController cancels and lists running jobs. *work.WorkManager
// implements it.
type WorkController interface {
	Cancel(ctx context.Context, jobID string) error
	ListRunningWorks(ctx context.Context) ([]work.RunningWork, error)
}

// JobLogReader reads the crawl log of a job. *logger.LogService implements it.
type JobLogReader interface {
	JobLogs(ctx context.Context, jobID string, limit, offset int32) ([]repository.CrawlLog, error)
}

type WorkManagerHandler struct {
	router *chi.Mux
	jobs   services.JobService
	logs   JobLogReader
	works  WorkController
}

func NewWorkManagerHandler(jobs services.JobService, logs JobLogReader, works WorkController) *WorkManagerHandler {
	router := chi.NewRouter()

	h := &WorkManagerHandler{
		router: router,
		jobs:   jobs,
		logs:   logs,
		works:  works,
	}

	router.Get("/", h.handleListWorks)
	router.Get("/running", h.handleRunningWorks)
	router.Get("/{jobID}", h.handleGetWork)
	router.Post("/{jobID}/cancel", h.handleCancelWork)

	return h
}

func (h *WorkManagerHandler) Router() *chi.Mux {
	return h.router
}

func (h *WorkManagerHandler) handleListWorks(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)

	jobs, total, err := h.jobs.List(r.Context(), int32(page.Limit), int32(page.Offset()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get jobs")
		return
	}
	if jobs == nil {
		jobs = []repository.Job{}
	}
	utils.WritePagination(w, http.StatusOK, jobs, page, total)
}

func (h *WorkManagerHandler) handleRunningWorks(w http.ResponseWriter, r *http.Request) {
	running, err := h.works.ListRunningWorks(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list running works")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list running works")
		return
	}
	utils.WriteJSON(w, http.StatusOK, running)
}

func (h *WorkManagerHandler) handleGetWork(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		log.Error().Err(err).Str("jobID", jobID).Msg("Failed to get job")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	logs, err := h.logs.JobLogs(r.Context(), jobID, maxJobLogs, 0)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get job logs")
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.NewWorkDetailResponse(job, logs))
}

func (h *WorkManagerHandler) handleCancelWork(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if err := h.works.Cancel(r.Context(), jobID); err != nil {
		if errors.Is(err, work.ErrWorkNotRunning) {
			utils.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteMessage(w, http.StatusOK, "cancellation requested")
}
