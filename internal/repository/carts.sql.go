package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CartOwnerParams struct {
	AccountID int64
	UserID    int64
}

const ensureCart = `-- name: EnsureCart :exec
INSERT INTO carts (account_id, user_id)
VALUES ($1, $2)
ON CONFLICT (account_id, user_id) DO NOTHING`

func (q *Queries) EnsureCart(ctx context.Context, arg CartOwnerParams) error {
	_, err := q.db.Exec(ctx, ensureCart, arg.AccountID, arg.UserID)
	return err
}

const lockCart = `-- name: LockCart :one
SELECT id, account_id, user_id, created_at, updated_at
FROM carts
WHERE account_id = $1 AND user_id = $2
FOR UPDATE`

func (q *Queries) LockCart(ctx context.Context, arg CartOwnerParams) (Cart, error) {
	row := q.db.QueryRow(ctx, lockCart, arg.AccountID, arg.UserID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.UserID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCartByUser = `-- name: GetCartByUser :one
SELECT id, account_id, user_id, created_at, updated_at
FROM carts
WHERE account_id = $1 AND user_id = $2`

func (q *Queries) GetCartByUser(ctx context.Context, arg CartOwnerParams) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartByUser, arg.AccountID, arg.UserID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.UserID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const touchCart = `-- name: TouchCart :exec
UPDATE carts SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchCart(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, touchCart, id)
	return err
}

const cartItemColumns = `id, account_id, cart_id, product_id, flavor_id, size_id, quantity, unit_price, created_at, updated_at`

const findCartItem = `-- name: FindCartItem :one
SELECT ` + cartItemColumns + `
FROM cart_items
WHERE cart_id = $1
  AND product_id = $2
  AND flavor_id IS NOT DISTINCT FROM $3
  AND size_id IS NOT DISTINCT FROM $4`

type FindCartItemParams struct {
	CartID    int64
	ProductID int64
	FlavorID  pgtype.Int8
	SizeID    pgtype.Int8
}

func (q *Queries) FindCartItem(ctx context.Context, arg FindCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, findCartItem, arg.CartID, arg.ProductID, arg.FlavorID, arg.SizeID)
	var i CartItem
	err := scanCartItem(row, &i)
	return i, err
}

const createCartItem = `-- name: CreateCartItem :one
INSERT INTO cart_items (account_id, cart_id, product_id, flavor_id, size_id, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + cartItemColumns

type CreateCartItemParams struct {
	AccountID int64
	CartID    int64
	ProductID int64
	FlavorID  pgtype.Int8
	SizeID    pgtype.Int8
	Quantity  int32
	UnitPrice pgtype.Numeric
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem,
		arg.AccountID,
		arg.CartID,
		arg.ProductID,
		arg.FlavorID,
		arg.SizeID,
		arg.Quantity,
		arg.UnitPrice,
	)
	var i CartItem
	err := scanCartItem(row, &i)
	return i, err
}

const updateCartItem = `-- name: UpdateCartItem :one
UPDATE cart_items
SET quantity = $2, unit_price = $3, updated_at = now()
WHERE id = $1
RETURNING ` + cartItemColumns

type UpdateCartItemParams struct {
	ID        int64
	Quantity  int32
	UnitPrice pgtype.Numeric
}

func (q *Queries) UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, updateCartItem, arg.ID, arg.Quantity, arg.UnitPrice)
	var i CartItem
	err := scanCartItem(row, &i)
	return i, err
}

const deleteCartItem = `-- name: DeleteCartItem :one
DELETE FROM cart_items
WHERE id = $1 AND cart_id = $2
RETURNING ` + cartItemColumns

type DeleteCartItemParams struct {
	ID     int64
	CartID int64
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, deleteCartItem, arg.ID, arg.CartID)
	var i CartItem
	err := scanCartItem(row, &i)
	return i, err
}

const listCartItems = `-- name: ListCartItems :many
SELECT ci.id, ci.account_id, ci.cart_id, ci.product_id, ci.flavor_id, ci.size_id,
  ci.quantity, ci.unit_price, ci.created_at, ci.updated_at,
  p.name, f.name, s.name
FROM cart_items ci
JOIN products p ON p.id = ci.product_id AND p.account_id = ci.account_id
LEFT JOIN flavors f ON f.id = ci.flavor_id AND f.account_id = ci.account_id
LEFT JOIN sizes s ON s.id = ci.size_id AND s.account_id = ci.account_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC, ci.id ASC`

func (q *Queries) ListCartItems(ctx context.Context, cartID int64) ([]ListCartItemsRow, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListCartItemsRow{}
	for rows.Next() {
		var i ListCartItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.CartID,
			&i.ProductID,
			&i.FlavorID,
			&i.SizeID,
			&i.Quantity,
			&i.UnitPrice,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductName,
			&i.FlavorName,
			&i.SizeName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanCartItem(row pgx.Row, i *CartItem) error {
	return row.Scan(
		&i.ID,
		&i.AccountID,
		&i.CartID,
		&i.ProductID,
		&i.FlavorID,
		&i.SizeID,
		&i.Quantity,
		&i.UnitPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}
