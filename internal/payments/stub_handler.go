package payments

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"zignasa/internal/team"
	"zignasa/internal/track"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type initiator interface {
	GetTeam(ctx context.Context, id int64) (*team.Team, error)
	MarkInitiated(ctx context.Context, id int64, orderID string, amountInPaise int64) error
}

// StubHandler serves the development checkout page. Opening the page marks
// the team Initiated at the catalog price; paying redirects to the
// confirmation page with a correctly signed payment.
type StubHandler struct {
	keySecret string
	teams     initiator
	catalog   *track.Catalog
	logger    *slog.Logger
}

func NewStubHandler(keySecret string, teams initiator, catalog *track.Catalog, logger *slog.Logger) *StubHandler {
	return &StubHandler{keySecret: keySecret, teams: teams, catalog: catalog, logger: logger}
}

func (h *StubHandler) RegisterRoutes(router chi.Router) {
	router.Get("/pay/stub", h.Checkout)
	router.Post("/pay/stub", h.Complete)
}

var stubPage = template.Must(template.New("stub").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Stub Pay</title></head><body>
<h2>Payment (test gateway)</h2>
<p>Team: {{.TeamID}}</p>
<p>Order: {{.OrderID}}</p>
<p>Amount: {{.Amount}}</p>
<form method="post" action="/pay/stub">
<input type="hidden" name="team_id" value="{{.TeamID}}">
<input type="hidden" name="order_id" value="{{.OrderID}}">
<button type="submit" name="action" value="pay">Pay</button>
<button type="submit" name="action" value="cancel">Cancel</button>
</form>
</body></html>`))

type stubView struct {
	TeamID  int64
	OrderID string
	Amount  string
}

func (h *StubHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.ParseInt(r.URL.Query().Get("team_id"), 10, 64)
	if err != nil || teamID <= 0 {
		http.Error(w, "team_id required", http.StatusBadRequest)
		return
	}

	t, err := h.teams.GetTeam(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			http.Error(w, "team not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "stub checkout: failed to load team", "team_id", teamID, "error", err)
		http.Error(w, "failed to load team", http.StatusInternalServerError)
		return
	}
	settings, err := h.catalog.Lookup(t.Domain)
	if err != nil {
		http.Error(w, "unknown track", http.StatusBadRequest)
		return
	}
	amount := settings.Amount(t.TeamSize)

	orderID := newGatewayID("order_")
	if err := h.teams.MarkInitiated(r.Context(), teamID, orderID, amount); err != nil {
		h.logger.WarnContext(r.Context(), "stub checkout: team not initiated", "team_id", teamID, "status", t.PaymentStatus, "error", err)
	}

	h.logger.InfoContext(r.Context(), "stub checkout opened", "team_id", teamID, "order_id", orderID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := stubPage.Execute(w, stubView{TeamID: teamID, OrderID: orderID, Amount: FormatAmount(amount)}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render stub checkout", "error", err)
	}
}

func (h *StubHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("action") != "pay" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	orderID := r.PostForm.Get("order_id")
	teamID := r.PostForm.Get("team_id")
	if orderID == "" || teamID == "" {
		http.Error(w, "order_id and team_id required", http.StatusBadRequest)
		return
	}

	paymentID := newGatewayID("pay_")
	q := url.Values{}
	q.Set("order_id", orderID)
	q.Set("payment_id", paymentID)
	q.Set("signature", Sign(h.keySecret, orderID, paymentID))
	q.Set("team_id", teamID)

	h.logger.InfoContext(r.Context(), "stub payment completed", "team_id", teamID, "payment_id", paymentID)
	http.Redirect(w, r, "/payment-confirmation?"+q.Encode(), http.StatusSeeOther)
}

// newGatewayID mimics Razorpay ids: a prefix and 14 alphanumerics.
func newGatewayID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
