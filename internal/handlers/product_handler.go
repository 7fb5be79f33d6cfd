package handlers

import (
	"errors"
	"net/http"

	"github.com/sonuudigital/lovecakes/internal/cache"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/sonuudigital/lovecakes/internal/web"
)

func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if !web.CheckContext(r.Context(), h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, web.ReqCancelledTitle, web.ReqCancelledMsg)
		return
	}

	scope, ok := h.accountScope(w, r)
	if !ok {
		return
	}

	query, err := ParseProductQuery(r.URL.Query())
	if err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		return
	}

	products, total, err := h.catalog.ListProducts(r.Context(), query.Params(scope.AccountID))
	if err != nil {
		h.internalError(w, r, "failed to list products", err, "accountId", scope.AccountID)
		return
	}

	resp := ProductListResponse{
		Items:      make([]ProductResponse, 0, len(products)),
		Page:       query.Page,
		PageSize:   query.PageSize,
		Total:      total,
		TotalPages: (total + int64(query.PageSize) - 1) / int64(query.PageSize),
	}
	for _, p := range products {
		item, err := toProductResponse(p)
		if err != nil {
			h.internalError(w, r, "failed to convert product", err, "productId", p.ID)
			return
		}
		resp.Items = append(resp.Items, item)
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, resp)
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	if !web.CheckContext(r.Context(), h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, web.ReqCancelledTitle, web.ReqCancelledMsg)
		return
	}

	scope, ok := h.accountScope(w, r)
	if !ok {
		return
	}

	productID, err := ParseID(r.PathValue("id"))
	if err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		return
	}

	cacheKey := cache.ProductKey(scope.AccountID, productID)
	var cached ProductDetailResponse
	if h.cache.GetJSON(r.Context(), cache.ProductType, cacheKey, &cached) {
		web.RespondWithJSON(w, h.logger, http.StatusOK, cached)
		return
	}

	detail, err := h.catalog.GetProductDetail(r.Context(), scope.AccountID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, notFoundTitle, productNotFoundMsg)
			return
		}
		h.internalError(w, r, "failed to get product", err, "accountId", scope.AccountID, "productId", productID)
		return
	}

	resp, err := toProductDetailResponse(detail)
	if err != nil {
		h.internalError(w, r, "failed to convert product", err, "productId", productID)
		return
	}

	if err := h.cache.SetJSON(r.Context(), cacheKey, resp); err != nil {
		h.logger.Warn("failed to cache product", "key", cacheKey, "error", err)
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, resp)
}

func (h *Handler) ListRelatedProductsHandler(w http.ResponseWriter, r *http.Request) {
	if !web.CheckContext(r.Context(), h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, web.ReqCancelledTitle, web.ReqCancelledMsg)
		return
	}

	scope, ok := h.accountScope(w, r)
	if !ok {
		return
	}

	productID, err := ParseID(r.PathValue("id"))
	if err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		return
	}
	limit, err := ParseRelatedLimit(r.URL.Query())
	if err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestTitle, err.Error())
		return
	}

	related, err := h.catalog.ListRelatedProducts(r.Context(), scope.AccountID, productID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, notFoundTitle, productNotFoundMsg)
			return
		}
		h.internalError(w, r, "failed to list related products", err, "accountId", scope.AccountID, "productId", productID)
		return
	}

	resp := RelatedProductsResponse{Items: make([]RelatedProductResponse, 0, len(related))}
	for _, p := range related {
		item, err := toProductResponse(p.Product)
		if err != nil {
			h.internalError(w, r, "failed to convert product", err, "productId", p.ID)
			return
		}
		resp.Items = append(resp.Items, RelatedProductResponse{ProductResponse: item, MatchScore: p.MatchScore})
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, resp)
}
