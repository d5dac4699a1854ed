package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/utils"
	"github.com/go-chi/chi/v5"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
	router *chi.Mux
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	h := &HealthHandler{checks: checks}

	r := chi.NewRouter()
	r.Get("/", h.handleHealthCheck)
	r.Get("/dependencies", h.handleDependencyHealth)

	h.router = r
	return h
}

func (h *HealthHandler) Router() *chi.Mux {
	return h.router
}

func (h *HealthHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "news-portal-crawler",
	}

	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *HealthHandler) handleDependencyHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]interface{}, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = "unhealthy"
			deps[name] = map[string]string{"status": "unhealthy", "error": err.Error()}
			continue
		}
		deps[name] = map[string]string{"status": "healthy"}
	}

	response := map[string]interface{}{
		"status":       status,
		"timestamp":    time.Now().UTC(),
		"dependencies": deps,
	}

	if status != "healthy" {
		utils.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	utils.WriteJSON(w, http.StatusOK, response)
}
