package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sonuudigital/lovecakes/internal/logs"
)

const (
	ReqCancelledTitle = "Request Timeout"
	ReqCancelledMsg   = "request cancelled"

	// RequestIDHeader is set on the response before handlers run, so error
	// bodies can quote it back to the client.
	RequestIDHeader = "X-Request-ID"

	problemContentType = "application/problem+json"
)

type ProblemDetail struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, logger logs.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, logger logs.Logger, r *http.Request, status int, title string, detail string) {
	problem := ProblemDetail{
		Type:      problemTypeFor(status),
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		RequestID: w.Header().Get(RequestIDHeader),
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(problem); err != nil && logger != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// CheckContext reports whether the request is still worth serving.
func CheckContext(ctx context.Context, logger logs.Logger) bool {
	if err := ctx.Err(); err != nil {
		if logger != nil {
			logger.Warn(ReqCancelledMsg, "error", err)
		}
		return false
	}
	return true
}

func problemTypeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.1"
	case http.StatusUnauthorized:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.2"
	case http.StatusForbidden:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.4"
	case http.StatusNotFound:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.5"
	case http.StatusRequestTimeout:
		return "https://tools.ietf.org/html/rfc9110#section-15.5.9"
	case http.StatusTooManyRequests:
		return "https://tools.ietf.org/html/rfc6585#section-4"
	case http.StatusInternalServerError:
		return "https://tools.ietf.org/html/rfc9110#section-15.6.1"
	case http.StatusServiceUnavailable:
		return "https://tools.ietf.org/html/rfc9110#section-15.6.4"
	default:
		return "about:blank"
	}
}
