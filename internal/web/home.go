package web

import (
	"net/http"

	"zignasa/internal/track"

	"github.com/go-chi/chi/v5"
)

type HomeHandler struct {
	catalog  *track.Catalog
	renderer *Renderer
}

func NewHomeHandler(catalog *track.Catalog, renderer *Renderer) *HomeHandler {
	return &HomeHandler{catalog: catalog, renderer: renderer}
}

func (h *HomeHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.Home)
}

type trackCard struct {
	Name        string
	Slug        string
	MaxTeamSize int
	Fee         int64
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	var cards []trackCard
	for _, s := range h.catalog.All() {
		cards = append(cards, trackCard{
			Name:        s.Track.String(),
			Slug:        s.Track.Slug(),
			MaxTeamSize: s.MaxTeamSize,
			Fee:         s.FeePerMemberPaise,
		})
	}
	h.renderer.Render(w, r, http.StatusOK, PageHome, map[string]any{"Tracks": cards})
}
