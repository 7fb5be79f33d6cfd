package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sonuudigital/lovecakes/internal/cart"
	"github.com/sonuudigital/lovecakes/internal/events"
	"github.com/sonuudigital/lovecakes/internal/pricing"
	"github.com/sonuudigital/lovecakes/internal/repository"
)

type CartQuerier interface {
	CreateCartItem(ctx context.Context, arg repository.CreateCartItemParams) (repository.CartItem, error)
	CreateOutboxEvent(ctx context.Context, arg repository.CreateOutboxEventParams) error
	DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (repository.CartItem, error)
	EnsureCart(ctx context.Context, arg repository.CartOwnerParams) error
	FindCartItem(ctx context.Context, arg repository.FindCartItemParams) (repository.CartItem, error)
	GetCartByUser(ctx context.Context, arg repository.CartOwnerParams) (repository.Cart, error)
	GetProduct(ctx context.Context, arg repository.GetProductParams) (repository.Product, error)
	ListCartItems(ctx context.Context, cartID int64) ([]repository.ListCartItemsRow, error)
	ListProductFlavors(ctx context.Context, arg repository.GetProductParams) ([]repository.Flavor, error)
	ListProductSizes(ctx context.Context, arg repository.GetProductParams) ([]repository.Size, error)
	LockCart(ctx context.Context, arg repository.CartOwnerParams) (repository.Cart, error)
	TouchCart(ctx context.Context, id int64) error
	UpdateCartItem(ctx context.Context, arg repository.UpdateCartItemParams) (repository.CartItem, error)
}

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	repository.DBTX
	TxBeginner
}

type AddItemParams struct {
	AccountID int64
	UserID    int64
	ProductID int64
	FlavorID  *int64
	SizeID    *int64
	Quantity  int32
}

type AddItemResult struct {
	Item           repository.CartItem
	Merged         bool
	QuantityCapped bool
}

// CartView is a user's cart as read. Cart is nil when the user has never
// added anything.
type CartView struct {
	Cart  *repository.Cart
	Items []repository.ListCartItemsRow
}

type CartRepository struct {
	q      CartQuerier
	execTx func(ctx context.Context, fn func(CartQuerier) error) error
	now    func() time.Time
}

func NewCartRepository(db DB) *CartRepository {
	queries := repository.New(db)
	return &CartRepository{
		q: queries,
		execTx: func(ctx context.Context, fn func(CartQuerier) error) error {
			tx, err := db.Begin(ctx)
			if err != nil {
				return err
			}
			defer tx.Rollback(ctx)

			if err := fn(queries.WithTx(tx)); err != nil {
				return err
			}
			return tx.Commit(ctx)
		},
		now: time.Now,
	}
}

// NewCartRepositoryWithQuerier runs every "transaction" directly on q. Used
// where the caller already owns the transaction, and in tests.
func NewCartRepositoryWithQuerier(q CartQuerier, now func() time.Time) *CartRepository {
	if now == nil {
		now = time.Now
	}
	return &CartRepository{
		q: q,
		execTx: func(ctx context.Context, fn func(CartQuerier) error) error {
			return fn(q)
		},
		now: now,
	}
}

func (r *CartRepository) AddItem(ctx context.Context, arg AddItemParams) (AddItemResult, error) {
	var result AddItemResult

	err := r.execTx(ctx, func(q CartQuerier) error {
		unitPrice, err := r.priceForOptions(ctx, q, arg)
		if err != nil {
			return err
		}

		owner := repository.CartOwnerParams{AccountID: arg.AccountID, UserID: arg.UserID}
		if err := q.EnsureCart(ctx, owner); err != nil {
			return fmt.Errorf("failed to ensure cart: %w", err)
		}
		userCart, err := q.LockCart(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		existing, err := q.FindCartItem(ctx, repository.FindCartItemParams{
			CartID:    userCart.ID,
			ProductID: arg.ProductID,
			FlavorID:  repository.Int8(arg.FlavorID),
			SizeID:    repository.Int8(arg.SizeID),
		})
		switch {
		case err == nil:
			quantity, capped := cart.MergeQuantity(existing.Quantity, arg.Quantity)
			result.Item, err = q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
				ID:        existing.ID,
				Quantity:  quantity,
				UnitPrice: repository.DecimalToNumeric(unitPrice),
			})
			if err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
			result.Merged = true
			result.QuantityCapped = capped
		case errors.Is(err, pgx.ErrNoRows):
			result.Item, err = q.CreateCartItem(ctx, repository.CreateCartItemParams{
				AccountID: arg.AccountID,
				CartID:    userCart.ID,
				ProductID: arg.ProductID,
				FlavorID:  repository.Int8(arg.FlavorID),
				SizeID:    repository.Int8(arg.SizeID),
				Quantity:  arg.Quantity,
				UnitPrice: repository.DecimalToNumeric(unitPrice),
			})
			if err != nil {
				return fmt.Errorf("failed to create cart item: %w", err)
			}
		default:
			return fmt.Errorf("failed to find cart item: %w", err)
		}

		if err := q.TouchCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("failed to touch cart: %w", err)
		}

		return r.recordEvent(ctx, q, events.CartItemAddedEventName, arg.UserID, result.Item, result.Merged)
	})
	if err != nil {
		return AddItemResult{}, err
	}
	return result, nil
}

// priceForOptions checks the product and the chosen options and returns the
// unit price for that combination.
func (r *CartRepository) priceForOptions(ctx context.Context, q CartQuerier, arg AddItemParams) (decimal.Decimal, error) {
	key := repository.GetProductParams{AccountID: arg.AccountID, ID: arg.ProductID}

	product, err := q.GetProduct(ctx, key)
	if err != nil {
		return decimal.Zero, repository.NotFound(err)
	}

	flavors, err := q.ListProductFlavors(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list flavors: %w", err)
	}
	flavorIDs := make([]int64, 0, len(flavors))
	for _, f := range flavors {
		flavorIDs = append(flavorIDs, f.ID)
	}
	if err := cart.CheckOption("flavor", flavorIDs, arg.FlavorID); err != nil {
		return decimal.Zero, err
	}

	sizes, err := q.ListProductSizes(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list sizes: %w", err)
	}
	sizeIDs := make([]int64, 0, len(sizes))
	modifier := decimal.Zero
	for _, s := range sizes {
		sizeIDs = append(sizeIDs, s.ID)
		if arg.SizeID != nil && s.ID == *arg.SizeID {
			if modifier, err = repository.NumericToDecimal(s.PriceModifier); err != nil {
				return decimal.Zero, err
			}
		}
	}
	if err := cart.CheckOption("size", sizeIDs, arg.SizeID); err != nil {
		return decimal.Zero, err
	}

	base, err := repository.NumericToDecimal(product.BasePrice)
	if err != nil {
		return decimal.Zero, err
	}
	promo, err := repository.NullableDecimal(product.PromotionalPrice)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.Current(base, promo, modifier), nil
}

func (r *CartRepository) GetCart(ctx context.Context, accountID, userID int64) (CartView, error) {
	userCart, err := r.q.GetCartByUser(ctx, repository.CartOwnerParams{AccountID: accountID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return CartView{Items: []repository.ListCartItemsRow{}}, nil
	}
	if err != nil {
		return CartView{}, fmt.Errorf("failed to get cart: %w", err)
	}

	items, err := r.q.ListCartItems(ctx, userCart.ID)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to list cart items: %w", err)
	}
	return CartView{Cart: &userCart, Items: items}, nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, accountID, userID, itemID int64) error {
	return r.execTx(ctx, func(q CartQuerier) error {
		userCart, err := q.LockCart(ctx, repository.CartOwnerParams{AccountID: accountID, UserID: userID})
		if err != nil {
			return repository.NotFound(err)
		}

		item, err := q.DeleteCartItem(ctx, repository.DeleteCartItemParams{ID: itemID, CartID: userCart.ID})
		if err != nil {
			return repository.NotFound(err)
		}

		if err := q.TouchCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("failed to touch cart: %w", err)
		}

		return r.recordEvent(ctx, q, events.CartItemRemovedEventName, userID, item, false)
	})
}

func (r *CartRepository) recordEvent(ctx context.Context, q CartQuerier, name string, userID int64, item repository.CartItem, merged bool) error {
	unitPrice, err := repository.NumericToDecimal(item.UnitPrice)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(events.CartItemEvent{
		AccountID:  item.AccountID,
		UserID:     userID,
		CartID:     item.CartID,
		ItemID:     item.ID,
		ProductID:  item.ProductID,
		FlavorID:   repository.Int8Ptr(item.FlavorID),
		SizeID:     repository.Int8Ptr(item.SizeID),
		Quantity:   item.Quantity,
		UnitPrice:  pricing.Format(unitPrice),
		Merged:     merged,
		OccurredAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", name, err)
	}

	if err := q.CreateOutboxEvent(ctx, repository.CreateOutboxEventParams{
		AggregateID: strconv.FormatInt(item.CartID, 10),
		EventName:   name,
		Payload:     payload,
	}); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}
