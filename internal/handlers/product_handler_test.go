package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sonuudigital/lovecakes/internal/cache"
	"github.com/sonuudigital/lovecakes/internal/handlers"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/sonuudigital/lovecakes/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const cacheTTLTest = 10 * time.Minute

func lemonTart() repository.Product {
	return repository.Product{
		ID:               5,
		AccountID:        accountIDTest,
		CategoryID:       2,
		CategoryName:     "Tarts",
		Name:             "Lemon Tart",
		Description:      pgtype.Text{String: "Zesty", Valid: true},
		BasePrice:        money("30.00"),
		PromotionalPrice: money("25.00"),
		Popularity:       80,
		Rating:           money("4.50"),
		Active:           true,
	}
}

func TestListProductsHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("ListProducts", mock.Anything, mock.MatchedBy(func(p repository.ListProductsParams) bool {
			return p.AccountID == accountIDTest &&
				p.Search.Valid && p.Search.String == "%lemon%" &&
				p.Sort == repository.SortPriceAsc &&
				p.Limit == 5 && p.Offset == 5 &&
				!p.CategoryID.Valid
		})).Return([]repository.Product{lemonTart()}, int64(7), nil).Once()

		req := anonymous(httptest.NewRequest(http.MethodGet, "/product?search=+lemon+&sort=price_asc&page=2&pageSize=5", nil))
		rr := httptest.NewRecorder()

		h.ListProductsHandler(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeJSON[handlers.ProductListResponse](t, rr)
		assert.Equal(t, int64(7), resp.Total)
		assert.Equal(t, int64(2), resp.TotalPages)
		assert.Equal(t, int32(2), resp.Page)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "30.00", resp.Items[0].BasePrice)
		require.NotNil(t, resp.Items[0].PromotionalPrice)
		assert.Equal(t, "25.00", *resp.Items[0].PromotionalPrice)
		assert.Equal(t, "25.00", resp.Items[0].CurrentPrice)
		assert.Equal(t, "4.50", resp.Items[0].Rating)
		catalog.AssertExpectations(t)
	})

	t.Run("Empty Page Keeps Total", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("ListProducts", mock.Anything, mock.Anything).Return([]repository.Product{}, int64(31), nil).Once()

		req := anonymous(httptest.NewRequest(http.MethodGet, "/product?page=9", nil))
		rr := httptest.NewRecorder()

		h.ListProductsHandler(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeJSON[handlers.ProductListResponse](t, rr)
		assert.NotNil(t, resp.Items)
		assert.Empty(t, resp.Items)
		assert.Equal(t, int64(31), resp.Total)
		assert.Equal(t, int64(3), resp.TotalPages)
	})

	t.Run("Invalid Price Range", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		req := anonymous(httptest.NewRequest(http.MethodGet, "/product?minPrice=50&maxPrice=10", nil))
		rr := httptest.NewRecorder()

		h.ListProductsHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "minPrice must not exceed maxPrice", decodeProblem(t, rr).Detail)
		catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("Search Not UTF-8", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		req := anonymous(httptest.NewRequest(http.MethodGet, "/product?search=%FF%FEcake", nil))
		rr := httptest.NewRecorder()

		h.ListProductsHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "search must be valid UTF-8", decodeProblem(t, rr).Detail)
		catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("Price Beyond Column", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		req := anonymous(httptest.NewRequest(http.MethodGet, "/product?minPrice=1e200000", nil))
		rr := httptest.NewRecorder()

		h.ListProductsHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "minPrice must be at most 99999999.99", decodeProblem(t, rr).Detail)
		catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("Missing Scope", func(t *testing.T) {
		h := handlers.NewHandler(testLogger(), new(MockCatalog), new(MockCarts), nil, nil)

		rr := httptest.NewRecorder()
		h.ListProductsHandler(rr, httptest.NewRequest(http.MethodGet, "/product", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Context Cancelled", func(t *testing.T) {
		h := handlers.NewHandler(testLogger(), new(MockCatalog), new(MockCarts), nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req := anonymous(httptest.NewRequest(http.MethodGet, "/product", nil).WithContext(ctx))
		rr := httptest.NewRecorder()

		h.ListProductsHandler(rr, req)

		assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	})

	t.Run("DB Error", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("ListProducts", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("db error")).Once()

		rr := httptest.NewRecorder()
		h.ListProductsHandler(rr, anonymous(httptest.NewRequest(http.MethodGet, "/product", nil)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db error")
	})
}

func productDetail() postgres.ProductDetail {
	return postgres.ProductDetail{
		Product: lemonTart(),
		Flavors: []repository.Flavor{{ID: 1, Name: "Lemon"}},
		Sizes: []repository.Size{
			{ID: 1, Name: "Small", PriceModifier: money("0")},
			{ID: 2, Name: "Large", PriceModifier: money("7.50")},
		},
	}
}

func productRequest(id string) *http.Request {
	req := anonymous(httptest.NewRequest(http.MethodGet, "/product/"+id, nil))
	req.SetPathValue("id", id)
	return req
}

func TestGetProductHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("GetProductDetail", mock.Anything, accountIDTest, int64(5)).Return(productDetail(), nil).Once()

		rr := httptest.NewRecorder()
		h.GetProductHandler(rr, productRequest("5"))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeJSON[handlers.ProductDetailResponse](t, rr)
		assert.Equal(t, "Lemon Tart", resp.Name)
		assert.Equal(t, "25.00", resp.CurrentPrice)
		require.Len(t, resp.Sizes, 2)
		assert.Equal(t, "25.00", resp.Sizes[0].CurrentPrice)
		assert.Equal(t, "7.50", resp.Sizes[1].PriceModifier)
		assert.Equal(t, "32.50", resp.Sizes[1].CurrentPrice)
		assert.Len(t, resp.Flavors, 1)
	})

	t.Run("Cache Hit", func(t *testing.T) {
		catalog := new(MockCatalog)
		client, redisMock := redismock.NewClientMock()
		c := cache.New(client, cacheTTLTest, testLogger(), nil)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), c, nil)

		redisMock.ExpectGet(cache.ProductKey(accountIDTest, 5)).
			SetVal(`{"id":5,"name":"Cached Tart","currentPrice":"20.00","flavors":[],"sizes":[]}`)

		rr := httptest.NewRecorder()
		h.GetProductHandler(rr, productRequest("5"))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeJSON[handlers.ProductDetailResponse](t, rr)
		assert.Equal(t, "Cached Tart", resp.Name)
		catalog.AssertNotCalled(t, "GetProductDetail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cache Miss Stores Result", func(t *testing.T) {
		catalog := new(MockCatalog)
		client, redisMock := redismock.NewClientMock()
		c := cache.New(client, cacheTTLTest, testLogger(), nil)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), c, nil)

		key := cache.ProductKey(accountIDTest, 5)
		redisMock.ExpectGet(key).RedisNil()
		redisMock.CustomMatch(func(expected, actual []interface{}) error {
			return nil
		}).ExpectSet(key, nil, cacheTTLTest).SetVal("OK")
		catalog.On("GetProductDetail", mock.Anything, accountIDTest, int64(5)).Return(productDetail(), nil).Once()

		rr := httptest.NewRecorder()
		h.GetProductHandler(rr, productRequest("5"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Cache Down Falls Through", func(t *testing.T) {
		catalog := new(MockCatalog)
		client, redisMock := redismock.NewClientMock()
		c := cache.New(client, cacheTTLTest, testLogger(), nil)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), c, nil)

		key := cache.ProductKey(accountIDTest, 5)
		redisMock.ExpectGet(key).SetErr(errors.New("connection refused"))
		redisMock.CustomMatch(func(expected, actual []interface{}) error {
			return nil
		}).ExpectSet(key, nil, cacheTTLTest).SetErr(errors.New("connection refused"))
		catalog.On("GetProductDetail", mock.Anything, accountIDTest, int64(5)).Return(productDetail(), nil).Once()

		rr := httptest.NewRecorder()
		h.GetProductHandler(rr, productRequest("5"))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("GetProductDetail", mock.Anything, accountIDTest, int64(99)).Return(nil, repository.ErrNotFound).Once()

		rr := httptest.NewRecorder()
		h.GetProductHandler(rr, productRequest("99"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Product not found.", decodeProblem(t, rr).Detail)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		for _, id := range []string{"abc", "0", "-3"} {
			rr := httptest.NewRecorder()
			h.GetProductHandler(rr, productRequest(id))
			assert.Equal(t, http.StatusBadRequest, rr.Code, id)
		}
		catalog.AssertNotCalled(t, "GetProductDetail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func relatedRequest(id, query string) *http.Request {
	req := anonymous(httptest.NewRequest(http.MethodGet, "/product/"+id+"/related"+query, nil))
	req.SetPathValue("id", id)
	return req
}

func TestListRelatedProductsHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		other := lemonTart()
		other.ID = 6
		catalog.On("ListRelatedProducts", mock.Anything, accountIDTest, int64(5), int32(4)).Return([]repository.RelatedProduct{
			{Product: other, MatchScore: 3},
		}, nil).Once()

		rr := httptest.NewRecorder()
		h.ListRelatedProductsHandler(rr, relatedRequest("5", ""))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeJSON[handlers.RelatedProductsResponse](t, rr)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(6), resp.Items[0].ID)
		assert.Equal(t, int32(3), resp.Items[0].MatchScore)
	})

	t.Run("Custom Limit", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("ListRelatedProducts", mock.Anything, accountIDTest, int64(5), int32(12)).Return([]repository.RelatedProduct{}, nil).Once()

		rr := httptest.NewRecorder()
		h.ListRelatedProductsHandler(rr, relatedRequest("5", "?limit=12"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"items":[]}`, rr.Body.String())
	})

	t.Run("Limit Out Of Range", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		rr := httptest.NewRecorder()
		h.ListRelatedProductsHandler(rr, relatedRequest("5", "?limit=13"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		catalog.AssertNotCalled(t, "ListRelatedProducts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Not Found", func(t *testing.T) {
		catalog := new(MockCatalog)
		h := handlers.NewHandler(testLogger(), catalog, new(MockCarts), nil, nil)

		catalog.On("ListRelatedProducts", mock.Anything, accountIDTest, int64(5), int32(4)).Return(nil, repository.ErrNotFound).Once()

		rr := httptest.NewRecorder()
		h.ListRelatedProductsHandler(rr, relatedRequest("5", ""))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
