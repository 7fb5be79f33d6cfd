package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	CountProducts(ctx context.Context, arg ListProductsParams) (int64, error)
	CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error)
	CreateOutboxEvent(ctx context.Context, arg CreateOutboxEventParams) error
	DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (CartItem, error)
	EnsureCart(ctx context.Context, arg CartOwnerParams) error
	FindCartItem(ctx context.Context, arg FindCartItemParams) (CartItem, error)
	GetCartByUser(ctx context.Context, arg CartOwnerParams) (Cart, error)
	GetProduct(ctx context.Context, arg GetProductParams) (Product, error)
	GetUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]OutboxEvent, error)
	ListCartItems(ctx context.Context, cartID int64) ([]ListCartItemsRow, error)
	ListPopularProducts(ctx context.Context, arg ListPopularProductsParams) ([]Product, error)
	ListProductFlavors(ctx context.Context, arg GetProductParams) ([]Flavor, error)
	ListProductSizes(ctx context.Context, arg GetProductParams) ([]Size, error)
	ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error)
	ListRelatedProducts(ctx context.Context, arg ListRelatedProductsParams) ([]RelatedProduct, error)
	LockCart(ctx context.Context, arg CartOwnerParams) (Cart, error)
	TouchCart(ctx context.Context, id int64) error
	UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) (CartItem, error)
	UpdateOutboxEventStatus(ctx context.Context, id pgtype.UUID) error
}

var _ Querier = (*Queries)(nil)
