package handlers

import (
	"context"
	"net/http"

	"github.com/sonuudigital/lovecakes/internal/cache"
	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/middlewares"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/sonuudigital/lovecakes/internal/repository/postgres"
	"github.com/sonuudigital/lovecakes/internal/web"
)

const (
	invalidRequestTitle = "Invalid Request"
	invalidBodyTitle    = "Invalid Request Body"
	notFoundTitle       = "Not Found"
	internalErrorTitle  = "Internal Server Error"
	unauthorizedTitle   = "Unauthorized"

	internalErrorMsg   = "An unexpected error occurred."
	missingScopeMsg    = "Request is not scoped to an account."
	missingUserMsg     = "Request is not scoped to a user."
	productNotFoundMsg = "Product not found."
	cartItemNotFound   = "Cart item not found."
)

type Catalog interface {
	ListProducts(ctx context.Context, arg repository.ListProductsParams) ([]repository.Product, int64, error)
	GetProductDetail(ctx context.Context, accountID, productID int64) (postgres.ProductDetail, error)
	ListRelatedProducts(ctx context.Context, accountID, productID int64, limit int32) ([]repository.RelatedProduct, error)
}

type Carts interface {
	AddItem(ctx context.Context, arg postgres.AddItemParams) (postgres.AddItemResult, error)
	GetCart(ctx context.Context, accountID, userID int64) (postgres.CartView, error)
	RemoveItem(ctx context.Context, accountID, userID, itemID int64) error
}

type CartRecorder interface {
	CartItemAdded(merged, capped bool)
}

type Handler struct {
	logger   logs.Logger
	catalog  Catalog
	carts    Carts
	cache    *cache.Cache
	recorder CartRecorder
}

// NewHandler wires the storefront handlers. cache and recorder may be nil.
func NewHandler(logger logs.Logger, catalog Catalog, carts Carts, c *cache.Cache, recorder CartRecorder) *Handler {
	return &Handler{
		logger:   logger,
		catalog:  catalog,
		carts:    carts,
		cache:    c,
		recorder: recorder,
	}
}

func (h *Handler) accountScope(w http.ResponseWriter, r *http.Request) (middlewares.Scope, bool) {
	scope, ok := middlewares.GetScope(r)
	if !ok || scope.AccountID <= 0 {
		web.RespondWithError(w, h.logger, r, http.StatusUnauthorized, unauthorizedTitle, missingScopeMsg)
		return middlewares.Scope{}, false
	}
	return scope, true
}

func (h *Handler) userScope(w http.ResponseWriter, r *http.Request) (middlewares.Scope, bool) {
	scope, ok := h.accountScope(w, r)
	if !ok {
		return scope, false
	}
	if !scope.Authenticated || scope.UserID <= 0 {
		web.RespondWithError(w, h.logger, r, http.StatusUnauthorized, unauthorizedTitle, missingUserMsg)
		return middlewares.Scope{}, false
	}
	return scope, true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	h.logger.Error(msg, append(args, "error", err)...)
	web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalErrorTitle, internalErrorMsg)
}
