package confirmation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"zignasa/internal/handoff"
	"zignasa/internal/httputil"
	"zignasa/internal/logger"
	"zignasa/internal/verification"
	"zignasa/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type endpointStub struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newEndpointStub(t *testing.T, status int, body verification.Response) *endpointStub {
	t.Helper()
	stub := &endpointStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.calls.Add(1)
		httputil.RespondWithJSON(w, status, body)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

type testEnv struct {
	router *chi.Mux
	store  *handoff.MemoryStore
	signer *handoff.Signer
}

func setupEnv(t *testing.T, verifier verification.Verifier) *testEnv {
	t.Helper()

	renderer, err := web.NewRenderer(logger.Discard())
	require.NoError(t, err)

	env := &testEnv{
		router: chi.NewRouter(),
		store:  handoff.NewMemoryStore(),
		signer: handoff.NewSigner("test-secret", 30*time.Minute),
	}
	controller := newTestController(verifier, env.store)
	NewHandler(controller, env.store, env.signer, renderer, false, logger.Discard()).RegisterRoutes(env.router)
	return env
}

func (env *testEnv) request(t *testing.T, target string, h *handoff.Handoff) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if h != nil {
		token, err := env.signer.Issue(h)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: handoff.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestPage_VerifiedRendersTeam(t *testing.T) {
	stub := newEndpointStub(t, http.StatusOK, verification.Response{Success: true, Data: byteBanditsData()})
	env := setupEnv(t, verification.NewClient(stub.server.URL, 10*time.Second))
	h := storedHandoff(t, env.store)

	w := env.request(t, "/payment-confirmation?order_id=O1&payment_id=P1&signature=S1&team_id=42", h)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Registration confirmed")
	assert.Contains(t, body, "Byte Bandits")
	assert.Contains(t, body, "Web Dev")
	assert.Contains(t, body, "<dd>3</dd>")
	assert.Contains(t, body, "₹600.00", "amount falls back to the handoff")
	assert.Equal(t, int32(1), stub.calls.Load())

	assert.Zero(t, env.store.Len())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, handoff.CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestPage_MissingOrderID(t *testing.T) {
	stub := newEndpointStub(t, http.StatusOK, verification.Response{Success: true})
	env := setupEnv(t, verification.NewClient(stub.server.URL, 10*time.Second))

	w := env.request(t, "/payment-confirmation?payment_id=P1&signature=S1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment verification failed")
	assert.Contains(t, w.Body.String(), MsgMissingParams)
	assert.Equal(t, int32(0), stub.calls.Load())
}

func TestPage_ConflictKeepsHandoff(t *testing.T) {
	stub := newEndpointStub(t, http.StatusConflict, verification.Response{Message: "Payment already verified", Data: byteBanditsData()})
	env := setupEnv(t, verification.NewClient(stub.server.URL, 10*time.Second))
	h := storedHandoff(t, env.store)

	w := env.request(t, "/payment-confirmation?order_id=O1&payment_id=P1&signature=S1&team_id=42", h)

	assert.Contains(t, w.Body.String(), "Registration confirmed")
	assert.Equal(t, 1, env.store.Len())
}

func TestPage_FailureShowsRemediation(t *testing.T) {
	stub := newEndpointStub(t, http.StatusBadRequest, verification.Response{Message: "Invalid payment signature"})
	env := setupEnv(t, verification.NewClient(stub.server.URL, 10*time.Second))

	w := env.request(t, "/payment-confirmation?order_id=O1&payment_id=P1&signature=bad&team_id=42", nil)

	body := w.Body.String()
	assert.Contains(t, body, "Invalid payment signature")
	assert.Contains(t, body, "Order ID: O1")
	assert.Contains(t, body, "5-7 business days")
}

func TestPage_IgnoresHandoffOfAnotherTeam(t *testing.T) {
	verifier := &stubVerifier{resp: &verification.Response{Success: true}}
	env := setupEnv(t, verifier)
	h := storedHandoff(t, env.store)

	env.request(t, "/payment-confirmation?order_id=O1&payment_id=P1&signature=S1&team_id=7", h)

	require.Len(t, verifier.calls, 1)
	assert.Empty(t, verifier.calls[0].Members)
	assert.Equal(t, 1, env.store.Len())
}

func TestJSON(t *testing.T) {
	verifier := &stubVerifier{resp: &verification.Response{Success: true, Data: byteBanditsData()}}
	env := setupEnv(t, verifier)

	w := env.request(t, "/api/payments/confirmation?order_id=O1&payment_id=P1&signature=S1&team_id=42", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var v View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, StateVerified, v.State)
	assert.Equal(t, "Byte Bandits", v.TeamName)
	assert.Equal(t, "3", v.MemberCount)
	assert.Equal(t, "N/A", v.Amount)
}
