package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sonuudigital/lovecakes/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	t.Run("Liveness", func(t *testing.T) {
		h := handlers.NewHealthHandler(testLogger(), nil)

		rr := httptest.NewRecorder()
		h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("Ready", func(t *testing.T) {
		h := handlers.NewHealthHandler(testLogger(), map[string]handlers.HealthCheck{
			"postgres": func(ctx context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return nil },
		})

		rr := httptest.NewRecorder()
		h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/api/readyz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`, rr.Body.String())
	})

	t.Run("Dependency Down", func(t *testing.T) {
		h := handlers.NewHealthHandler(testLogger(), map[string]handlers.HealthCheck{
			"postgres": func(ctx context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return errors.New("dial tcp: connection refused") },
		})

		rr := httptest.NewRecorder()
		h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/api/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"postgres":"ok","redis":"unavailable"}}`, rr.Body.String())
		assert.NotContains(t, rr.Body.String(), "refused")
	})
}
