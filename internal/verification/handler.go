package verification

import (
	"log/slog"
	"net/http"

	"zignasa/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/api/payments/verify", h.Verify)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithJSON(w, http.StatusBadRequest, Response{Message: "Invalid request body"})
		return
	}

	h.logger.InfoContext(r.Context(), "verifying payment", "team_id", req.TeamID, "order_id", req.RazorpayOrderID)
	data, err := h.service.Verify(r.Context(), req)
	status, resp := Outcome(data, err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "payment verification failed", "team_id", req.TeamID, "error", err)
	} else if err != nil {
		h.logger.InfoContext(r.Context(), "payment not verified", "team_id", req.TeamID, "status", status, "error", err)
	}

	httputil.RespondWithJSON(w, status, resp)
}
