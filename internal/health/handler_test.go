package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"zignasa/internal/health"
	"zignasa/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	newRouter := func(deps map[string]health.Pinger) chi.Router {
		router := chi.NewRouter()
		health.NewHandler(deps, metrics.NewMock().Health).RegisterRoutes(router)
		return router
	}

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Ready_AllUp", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(map[string]health.Pinger{"postgres": up}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Ready_DependencyDown", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(map[string]health.Pinger{"postgres": up, "redis": down}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp health.HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "ok", resp.Checks["postgres"])
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})
}
