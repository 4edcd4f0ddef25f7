package confirmation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"zignasa/internal/handoff"
	"zignasa/internal/httputil"
	"zignasa/internal/web"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	controller    *Controller
	handoffs      handoff.Store
	signer        *handoff.Signer
	renderer      *web.Renderer
	secureCookies bool
	logger        *slog.Logger
}

func NewHandler(controller *Controller, handoffs handoff.Store, signer *handoff.Signer, renderer *web.Renderer, secureCookies bool, logger *slog.Logger) *Handler {
	return &Handler{
		controller:    controller,
		handoffs:      handoffs,
		signer:        signer,
		renderer:      renderer,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/payment-confirmation", h.Page)
	router.Get("/api/payments/confirmation", h.JSON)
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	view := h.confirm(w, r)
	h.renderer.Render(w, r, http.StatusOK, web.PageConfirmation, view)
}

func (h *Handler) JSON(w http.ResponseWriter, r *http.Request) {
	view := h.confirm(w, r)
	httputil.RespondWithJSON(w, http.StatusOK, view)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) View {
	params := ParamsFromQuery(r.URL.Query())
	stashed := h.loadHandoff(r.Context(), r, params)

	outcome := h.controller.Verify(r.Context(), params, stashed)
	if outcome.State == StateVerified && stashed != nil {
		handoff.ClearCookie(w, h.secureCookies)
	}
	return NewView(outcome)
}

// loadHandoff resolves the cookie to a handoff. A missing, invalid or
// expired handoff, or one for a different team, yields nil.
func (h *Handler) loadHandoff(ctx context.Context, r *http.Request, p Params) *handoff.Handoff {
	token, ok := handoff.TokenFromRequest(r)
	if !ok {
		return nil
	}
	id, teamID, err := h.signer.Parse(token)
	if err != nil {
		h.logger.InfoContext(ctx, "ignoring handoff cookie", "error", err)
		return nil
	}
	if p.TeamID != "" && p.TeamID != formatID(teamID) {
		h.logger.InfoContext(ctx, "handoff belongs to another team", "team_id", p.TeamID, "handoff_team_id", teamID)
		return nil
	}

	stashed, err := h.handoffs.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, handoff.ErrNotFound) {
			h.logger.WarnContext(ctx, "failed to load handoff", "error", err)
		}
		return nil
	}
	return stashed
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
