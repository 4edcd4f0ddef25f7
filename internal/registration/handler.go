package registration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"zignasa/internal/handoff"
	"zignasa/internal/httputil"
	"zignasa/internal/team"
	"zignasa/internal/track"
	"zignasa/internal/web"

	"github.com/go-chi/chi/v5"
)

type Submitter interface {
	Submit(ctx context.Context, f Form) (*Redirect, error)
	TeamNameExists(ctx context.Context, name string) (bool, error)
}

type Handler struct {
	submitter     Submitter
	catalog       *track.Catalog
	renderer      *web.Renderer
	cookieTTL     time.Duration
	secureCookies bool
	logger        *slog.Logger
}

func NewHandler(submitter Submitter, catalog *track.Catalog, renderer *web.Renderer, signer *handoff.Signer, secureCookies bool, logger *slog.Logger) *Handler {
	return &Handler{
		submitter:     submitter,
		catalog:       catalog,
		renderer:      renderer,
		cookieTTL:     signer.TTL(),
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/register/{track}", h.ShowForm)
	router.Post("/register/{track}", h.SubmitForm)
	router.Post("/api/registrations", h.CreateRegistration)
	router.Get("/api/teams/exists", h.TeamNameExists)
}

func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.BySlug(chi.URLParam(r, "track"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, web.PageRegister, newFormView(settings, Form{TeamSize: 1}, ""))
}

func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.BySlug(chi.URLParam(r, "track"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, r, http.StatusBadRequest, web.PageRegister, newFormView(settings, Form{TeamSize: 1}, "Invalid form submission"))
		return
	}

	form := FormFromValues(settings.Track.String(), r.PostForm)

	h.logger.InfoContext(r.Context(), "registration submitted", "track", settings.Track, "team_name", form.TeamName)
	redirect, err := h.submitter.Submit(r.Context(), form)
	if err != nil {
		h.renderer.Render(w, r, statusFor(err), web.PageRegister, newFormView(settings, form, messageFor(err)))
		return
	}

	h.setHandoffCookie(w, redirect)
	http.Redirect(w, r, redirect.URL, http.StatusSeeOther)
}

type createResponse struct {
	TeamID      int64  `json:"teamId"`
	RedirectURL string `json:"redirectUrl"`
}

func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "registration submitted", "track", form.Track, "team_name", form.TeamName)
	redirect, err := h.submitter.Submit(r.Context(), form)
	if err != nil {
		httputil.RespondWithError(w, statusFor(err), messageFor(err))
		return
	}

	h.setHandoffCookie(w, redirect)
	httputil.RespondWithJSON(w, http.StatusCreated, createResponse{
		TeamID:      redirect.TeamID,
		RedirectURL: redirect.URL,
	})
}

func (h *Handler) TeamNameExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.submitter.TeamNameExists(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to check team name", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to check team name")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) setHandoffCookie(w http.ResponseWriter, redirect *Redirect) {
	if redirect.HandoffToken == "" {
		return
	}
	handoff.SetCookie(w, redirect.HandoffToken, h.cookieTTL, h.secureCookies)
}

func statusFor(err error) int {
	switch KindOf(err) {
	case ValidationError:
		if errors.Is(err, team.ErrTeamNameTaken) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case ConfigurationError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Something went wrong. Please try again."
}
