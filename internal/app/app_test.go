package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"zignasa/internal/config"
	"zignasa/internal/handoff"
	"zignasa/internal/health"
	"zignasa/internal/logger"
	"zignasa/internal/messaging"
	"zignasa/internal/metrics"
	"zignasa/internal/team"
	"zignasa/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.PublicURL = "http://zignasa.test"
	cfg.Handoff.Secret = "handoff-secret"
	cfg.Handoff.TTLMinutes = 30
	cfg.Payments.Provider = "stub"
	cfg.Payments.KeySecret = "key-secret"
	cfg.Verification.TimeoutSeconds = 10
	cfg.Tracks = []config.TrackConfig{
		{Name: "Web Dev", MaxTeamSize: 5, FeePerMemberPaise: 20000},
		{Name: "Agentic AI", MaxTeamSize: 5, FeePerMemberPaise: 25000},
		{Name: "UI/UX", MaxTeamSize: 3, FeePerMemberPaise: 15000},
	}
	return cfg
}

var orderIDPattern = regexp.MustCompile(`order_[0-9a-f]{14}`)

func TestRegistrationToConfirmation_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, team.Models(), team.MigrationStatements()...)
	testdb.CleanupTables(t, pgContainer.DB, "registrations", "teams")

	repo := team.NewRepository(pgContainer.DB, metrics.NewMock())
	store := handoff.NewMemoryStore()

	router, err := NewRouter(testConfig(), Deps{
		Teams:     repo,
		Handoffs:  store,
		Publisher: messaging.Nop{},
		Pingers:   map[string]health.Pinger{"database": pgContainer.DB, "handoff": store},
		Metrics:   metrics.NewMock(),
		Logger:    logger.Discard(),
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Submit the registration form.
	form := url.Values{}
	form.Set("team_name", "Byte Bandits")
	form.Set("team_size", "3")
	for i, name := range []string{"Asha", "Ravi", "Meera"} {
		prefix := "members[" + string(rune('0'+i)) + "]."
		form.Set(prefix+"name", name)
		form.Set(prefix+"email", strings.ToLower(name)+"@example.com")
		form.Set(prefix+"phone", "987654321"+string(rune('0'+i)))
		form.Set(prefix+"college", "KL University")
		form.Set(prefix+"roll_number", "210003000"+string(rune('0'+i)))
	}
	w := serve(router, http.MethodPost, "/register/web-dev", form, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	handoffCookie := cookies[0]

	checkout, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "zignasa.test", checkout.Host)
	assert.Equal(t, "/pay/stub", checkout.Path)
	assert.Equal(t, "60000", checkout.Query().Get("amount"))
	teamID := checkout.Query().Get("team_id")

	// Open the stub checkout.
	w = serve(router, http.MethodGet, checkout.RequestURI(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orderID := orderIDPattern.FindString(w.Body.String())
	require.NotEmpty(t, orderID)

	// Pay.
	w = serve(router, http.MethodPost, "/pay/stub", url.Values{"team_id": {teamID}, "order_id": {orderID}, "action": {"pay"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	confirmationURL := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(confirmationURL, "/payment-confirmation?"))

	// Land on the confirmation page.
	w = serve(router, http.MethodGet, confirmationURL, nil, handoffCookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Registration confirmed")
	assert.Contains(t, body, "Byte Bandits")
	assert.Contains(t, body, "Web Dev")
	assert.Contains(t, body, "<dd>3</dd>")
	assert.Contains(t, body, "₹600.00")
	assert.Zero(t, store.Len())

	teams, err := pgContainer.DB.NewSelect().Model((*team.Team)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, teams)

	var stored team.Team
	require.NoError(t, pgContainer.DB.NewSelect().Model(&stored).Where("team_name = ?", "Byte Bandits").Scan(ctx))
	assert.Equal(t, team.StatusCompleted, stored.PaymentStatus)
	require.NotNil(t, stored.RazorpayOrderID)
	assert.Equal(t, orderID, *stored.RazorpayOrderID)

	regs, err := repo.ListRegistrations(ctx, stored.ID)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	leads := 0
	for _, r := range regs {
		if r.Role == team.RoleLead {
			leads++
			assert.Equal(t, "Asha", r.Name)
		}
	}
	assert.Equal(t, 1, leads)

	// Reloading the page is an idempotent success.
	w = serve(router, http.MethodGet, confirmationURL, nil, handoffCookie)
	assert.Contains(t, w.Body.String(), "Registration confirmed")
	assert.Contains(t, w.Body.String(), "Byte Bandits")

	// Readiness sees both dependencies.
	w = serve(router, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func serve(router chi.Router, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
