package handler

import (
	"net/http"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/common/utils"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type PortalHandler struct {
	router *chi.Mux
}

func NewPortalHandler() *PortalHandler {
	h := &PortalHandler{router: chi.NewRouter()}
	h.router.Get("/", h.handleListPortals)
	return h
}

func (h *PortalHandler) Router() *chi.Mux {
	return h.router
}

func (h *PortalHandler) handleListPortals(w http.ResponseWriter, _ *http.Request) {
	registry := crawler.GetPortalRegistry()
	portals := lo.Map(crawler.PortalNames(), func(name string, _ int) models.PortalInfo {
		a := registry[name]
		return models.PortalInfo{
			Name:       a.Name,
			BaseURL:    a.BaseURL,
			Mode:       string(a.Mode),
			Pagination: string(a.Pagination),
		}
	})
	utils.WriteJSON(w, http.StatusOK, portals)
}
