package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sonuudigital/lovecakes/internal/cache"
	"github.com/sonuudigital/lovecakes/internal/cart"
	"github.com/sonuudigital/lovecakes/internal/middlewares"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/sonuudigital/lovecakes/internal/repository/postgres"
	"github.com/sonuudigital/lovecakes/internal/web"
)

const maxBodyBytes = 1 << 16

func (r AddCartItemRequest) Validate() error {
	if r.ProductID <= 0 {
		return errors.New("productId must be a positive integer")
	}
	if !cart.ValidQuantity(r.Quantity) {
		return fmt.Errorf("quantity must be between %d and %d", cart.MinItemQuantity, cart.MaxItemQuantity)
	}
	if r.FlavorID != nil && *r.FlavorID <= 0 {
		return errors.New("flavorId must be a positive integer")
	}
	if r.SizeID != nil && *r.SizeID <= 0 {
		return errors.New("sizeId must be a positive integer")
	}
	return nil
}

// decodeBody reads exactly one JSON object with known fields into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func (h *Handler) AddCartItemHandler(w http.ResponseWriter, r *http.Request) {
	if !web.CheckContext(r.Context(), h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, web.ReqCancelledTitle, web.ReqCancelledMsg)
		return
	}

	scope, ok := h.userScope(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Debug("rejected cart item body", "error", err)
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidBodyTitle, "Request body must be a single JSON cart item.")
		return
	}
	if err := req.Validate(); err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		return
	}

	result, err := h.carts.AddItem(r.Context(), postgres.AddItemParams{
		AccountID: scope.AccountID,
		UserID:    scope.UserID,
		ProductID: req.ProductID,
		FlavorID:  req.FlavorID,
		SizeID:    req.SizeID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, notFoundTitle, productNotFoundMsg)
		case errors.Is(err, cart.ErrInvalidOption):
			h.logger.Debug("rejected cart item option", "productId", req.ProductID, "error", err)
			web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		default:
			h.internalError(w, r, "failed to add cart item", err, "accountId", scope.AccountID, "userId", scope.UserID)
		}
		return
	}

	h.invalidateCart(r, scope)
	if h.recorder != nil {
		h.recorder.CartItemAdded(result.Merged, result.QuantityCapped)
	}

	item, _, err := toCartItemResponse(result.Item)
	if err != nil {
		h.internalError(w, r, "failed to convert cart item", err, "itemId", result.Item.ID)
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	h.logger.Info("cart item added",
		"accountId", scope.AccountID,
		"userId", scope.UserID,
		"itemId", result.Item.ID,
		"merged", result.Merged,
		"quantityCapped", result.QuantityCapped,
	)

	web.RespondWithJSON(w, h.logger, status, AddCartItemResponse{
		Item:           item,
		Merged:         result.Merged,
		QuantityCapped: result.QuantityCapped,
	})
}

func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	if !web.CheckContext(r.Context(), h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, web.ReqCancelledTitle, web.ReqCancelledMsg)
		return
	}

	scope, ok := h.userScope(w, r)
	if !ok {
		return
	}

	cacheKey := cache.CartKey(scope.AccountID, scope.UserID)
	var cached CartResponse
	if h.cache.GetJSON(r.Context(), cache.CartType, cacheKey, &cached) {
		web.RespondWithJSON(w, h.logger, http.StatusOK, cached)
		return
	}

	// The version must be read before the cart so a concurrent mutation
	// keeps this snapshot out of the cache.
	version, versionErr := h.cache.Version(r.Context(), cacheKey)
	if versionErr != nil {
		h.logger.Warn("skipping cart cache", "key", cacheKey, "error", versionErr)
	}

	view, err := h.carts.GetCart(r.Context(), scope.AccountID, scope.UserID)
	if err != nil {
		h.internalError(w, r, "failed to get cart", err, "accountId", scope.AccountID, "userId", scope.UserID)
		return
	}

	resp, err := toCartResponse(view)
	if err != nil {
		h.internalError(w, r, "failed to convert cart", err, "accountId", scope.AccountID, "userId", scope.UserID)
		return
	}

	if versionErr == nil {
		if _, err := h.cache.SetJSONIfVersion(r.Context(), cacheKey, version, resp); err != nil {
			h.logger.Warn("failed to cache cart", "key", cacheKey, "error", err)
		}
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, resp)
}

func (h *Handler) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	if !web.CheckContext(r.Context(), h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, web.ReqCancelledTitle, web.ReqCancelledMsg)
		return
	}

	scope, ok := h.userScope(w, r)
	if !ok {
		return
	}

	itemID, err := ParseID(r.PathValue("id"))
	if err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		return
	}

	if err := h.carts.RemoveItem(r.Context(), scope.AccountID, scope.UserID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, notFoundTitle, cartItemNotFound)
			return
		}
		h.internalError(w, r, "failed to remove cart item", err, "accountId", scope.AccountID, "itemId", itemID)
		return
	}

	h.invalidateCart(r, scope)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidateCart(r *http.Request, scope middlewares.Scope) {
	key := cache.CartKey(scope.AccountID, scope.UserID)
	if err := h.cache.Invalidate(r.Context(), key); err != nil {
		h.logger.Warn("failed to invalidate cart cache", "key", key, "error", err)
	}
}
