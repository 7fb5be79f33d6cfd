package postgres_test

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) CountProducts(ctx context.Context, arg repository.ListProductsParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuerier) ListProducts(ctx context.Context, arg repository.ListProductsParams) ([]repository.Product, error) {
	args := m.Called(ctx, arg)
	if p, ok := args.Get(0).([]repository.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) GetProduct(ctx context.Context, arg repository.GetProductParams) (repository.Product, error) {
	args := m.Called(ctx, arg)
	if p, ok := args.Get(0).(repository.Product); ok {
		return p, args.Error(1)
	}
	return repository.Product{}, args.Error(1)
}

func (m *MockQuerier) ListProductFlavors(ctx context.Context, arg repository.GetProductParams) ([]repository.Flavor, error) {
	args := m.Called(ctx, arg)
	if f, ok := args.Get(0).([]repository.Flavor); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) ListProductSizes(ctx context.Context, arg repository.GetProductParams) ([]repository.Size, error) {
	args := m.Called(ctx, arg)
	if s, ok := args.Get(0).([]repository.Size); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) ListRelatedProducts(ctx context.Context, arg repository.ListRelatedProductsParams) ([]repository.RelatedProduct, error) {
	args := m.Called(ctx, arg)
	if p, ok := args.Get(0).([]repository.RelatedProduct); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) ListPopularProducts(ctx context.Context, arg repository.ListPopularProductsParams) ([]repository.Product, error) {
	args := m.Called(ctx, arg)
	if p, ok := args.Get(0).([]repository.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) EnsureCart(ctx context.Context, arg repository.CartOwnerParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *MockQuerier) LockCart(ctx context.Context, arg repository.CartOwnerParams) (repository.Cart, error) {
	args := m.Called(ctx, arg)
	if c, ok := args.Get(0).(repository.Cart); ok {
		return c, args.Error(1)
	}
	return repository.Cart{}, args.Error(1)
}

func (m *MockQuerier) GetCartByUser(ctx context.Context, arg repository.CartOwnerParams) (repository.Cart, error) {
	args := m.Called(ctx, arg)
	if c, ok := args.Get(0).(repository.Cart); ok {
		return c, args.Error(1)
	}
	return repository.Cart{}, args.Error(1)
}

func (m *MockQuerier) TouchCart(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuerier) FindCartItem(ctx context.Context, arg repository.FindCartItemParams) (repository.CartItem, error) {
	args := m.Called(ctx, arg)
	if i, ok := args.Get(0).(repository.CartItem); ok {
		return i, args.Error(1)
	}
	return repository.CartItem{}, args.Error(1)
}

func (m *MockQuerier) CreateCartItem(ctx context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error) {
	args := m.Called(ctx, arg)
	if i, ok := args.Get(0).(repository.CartItem); ok {
		return i, args.Error(1)
	}
	return repository.CartItem{}, args.Error(1)
}

func (m *MockQuerier) UpdateCartItem(ctx context.Context, arg repository.UpdateCartItemParams) (repository.CartItem, error) {
	args := m.Called(ctx, arg)
	if i, ok := args.Get(0).(repository.CartItem); ok {
		return i, args.Error(1)
	}
	return repository.CartItem{}, args.Error(1)
}

func (m *MockQuerier) DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (repository.CartItem, error) {
	args := m.Called(ctx, arg)
	if i, ok := args.Get(0).(repository.CartItem); ok {
		return i, args.Error(1)
	}
	return repository.CartItem{}, args.Error(1)
}

func (m *MockQuerier) ListCartItems(ctx context.Context, cartID int64) ([]repository.ListCartItemsRow, error) {
	args := m.Called(ctx, cartID)
	if i, ok := args.Get(0).([]repository.ListCartItemsRow); ok {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) CreateOutboxEvent(ctx context.Context, arg repository.CreateOutboxEventParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *MockQuerier) GetUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]repository.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if e, ok := args.Get(0).([]repository.OutboxEvent); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuerier) UpdateOutboxEventStatus(ctx context.Context, id pgtype.UUID) error {
	return m.Called(ctx, id).Error(0)
}
