package router

import (
	"errors"
	"net/http"

	"github.com/sonuudigital/lovecakes/internal/handlers"
	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/metrics"
	"github.com/sonuudigital/lovecakes/internal/middlewares"
)

type Dependencies struct {
	Logger      logs.Logger
	Handler     *handlers.Handler
	Health      *handlers.HealthHandler
	Validator   middlewares.TokenValidator
	RateLimiter *middlewares.RateLimiterMiddleware
	Metrics     *metrics.Registry
}

type middleware func(http.Handler) http.Handler

func New(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil || deps.Handler == nil || deps.Health == nil || deps.Validator == nil {
		return nil, errors.New("router: logger, handler, health handler and token validator are required")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthz", deps.Health.Liveness)
	mux.HandleFunc("GET /api/readyz", deps.Health.Readiness)

	var observer middlewares.Observer
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
		observer = deps.Metrics
	}

	rateLimit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		rateLimit = deps.RateLimiter.Middleware
	}

	catalogMw := []middleware{middlewares.OptionalAuthMiddleware(deps.Validator, deps.Logger), rateLimit}
	configCatalogRoutes(mux, deps.Handler, catalogMw)

	cartMw := []middleware{middlewares.AuthMiddleware(deps.Validator, deps.Logger), rateLimit}
	configCartRoutes(mux, deps.Handler, cartMw)

	return middlewares.Chain(mux,
		middlewares.RequestID,
		middlewares.AccessLog(deps.Logger, observer),
	), nil
}

func configCatalogRoutes(mux *http.ServeMux, h *handlers.Handler, mws []middleware) {
	mux.Handle("GET /product", wrap(h.ListProductsHandler, mws))
	mux.Handle("GET /product/{id}", wrap(h.GetProductHandler, mws))
	mux.Handle("GET /product/{id}/related", wrap(h.ListRelatedProductsHandler, mws))
}

func configCartRoutes(mux *http.ServeMux, h *handlers.Handler, mws []middleware) {
	mux.Handle("GET /cart", wrap(h.GetCartHandler, mws))
	mux.Handle("POST /cart/item", wrap(h.AddCartItemHandler, mws))
	mux.Handle("DELETE /cart/item/{id}", wrap(h.RemoveCartItemHandler, mws))
}

func wrap(fn http.HandlerFunc, mws []middleware) http.Handler {
	chain := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, mw := range mws {
		chain = append(chain, mw)
	}
	return middlewares.Chain(fn, chain...)
}
