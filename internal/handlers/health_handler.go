package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/web"
)

const readinessTimeout = 2 * time.Second

type HealthCheck func(ctx context.Context) error

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	logger logs.Logger
	checks map[string]HealthCheck
}

func NewHealthHandler(logger logs.Logger, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{logger: logger, checks: checks}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	web.RespondWithJSON(w, h.logger, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness runs every dependency check and answers 503 if any fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("readiness check failed", "check", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	web.RespondWithJSON(w, h.logger, status, resp)
}
