package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/middlewares"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/sonuudigital/lovecakes/internal/repository/postgres"
	"github.com/sonuudigital/lovecakes/internal/web"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	accountIDTest int64 = 7
	userIDTest    int64 = 42
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListProducts(ctx context.Context, arg repository.ListProductsParams) ([]repository.Product, int64, error) {
	args := m.Called(ctx, arg)
	if p, ok := args.Get(0).([]repository.Product); ok {
		return p, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockCatalog) GetProductDetail(ctx context.Context, accountID, productID int64) (postgres.ProductDetail, error) {
	args := m.Called(ctx, accountID, productID)
	if d, ok := args.Get(0).(postgres.ProductDetail); ok {
		return d, args.Error(1)
	}
	return postgres.ProductDetail{}, args.Error(1)
}

func (m *MockCatalog) ListRelatedProducts(ctx context.Context, accountID, productID int64, limit int32) ([]repository.RelatedProduct, error) {
	args := m.Called(ctx, accountID, productID, limit)
	if p, ok := args.Get(0).([]repository.RelatedProduct); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) AddItem(ctx context.Context, arg postgres.AddItemParams) (postgres.AddItemResult, error) {
	args := m.Called(ctx, arg)
	if r, ok := args.Get(0).(postgres.AddItemResult); ok {
		return r, args.Error(1)
	}
	return postgres.AddItemResult{}, args.Error(1)
}

func (m *MockCarts) GetCart(ctx context.Context, accountID, userID int64) (postgres.CartView, error) {
	args := m.Called(ctx, accountID, userID)
	if v, ok := args.Get(0).(postgres.CartView); ok {
		return v, args.Error(1)
	}
	return postgres.CartView{}, args.Error(1)
}

func (m *MockCarts) RemoveItem(ctx context.Context, accountID, userID, itemID int64) error {
	return m.Called(ctx, accountID, userID, itemID).Error(0)
}

type cartAdd struct {
	merged, capped bool
}

type fakeRecorder struct {
	adds []cartAdd
}

func (f *fakeRecorder) CartItemAdded(merged, capped bool) {
	f.adds = append(f.adds, cartAdd{merged, capped})
}

func testLogger() logs.Logger {
	return logs.NewSlogLoggerWithLevel(io.Discard, "ERROR")
}

func money(s string) pgtype.Numeric {
	return repository.DecimalToNumeric(decimal.RequireFromString(s))
}

func anonymous(req *http.Request) *http.Request {
	return req.WithContext(middlewares.WithScope(req.Context(), middlewares.Scope{AccountID: accountIDTest}))
}

func signedIn(req *http.Request) *http.Request {
	return req.WithContext(middlewares.WithScope(req.Context(), middlewares.Scope{
		AccountID:     accountIDTest,
		UserID:        userIDTest,
		Authenticated: true,
	}))
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) web.ProblemDetail {
	t.Helper()
	var problem web.ProblemDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&problem))
	return problem
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}
