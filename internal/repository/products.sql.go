package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductSort string

const (
	SortRelevance ProductSort = "relevance"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
	SortNewest    ProductSort = "newest"
	SortName      ProductSort = "name"
)

// effectivePriceSQL mirrors pricing.Effective: a promotion counts only when
// it is positive and below the base price.
const effectivePriceSQL = `(CASE WHEN p.promotional_price > 0 AND p.promotional_price < p.base_price THEN p.promotional_price ELSE p.base_price END)`

var productOrderBy = map[ProductSort]string{
	SortRelevance: "p.popularity DESC, p.rating DESC, p.id ASC",
	SortPriceAsc:  effectivePriceSQL + " ASC, p.id ASC",
	SortPriceDesc: effectivePriceSQL + " DESC, p.id ASC",
	SortRating:    "p.rating DESC, p.popularity DESC, p.id ASC",
	SortNewest:    "p.created_at DESC, p.id ASC",
	SortName:      "lower(p.name) ASC, p.id ASC",
}

func ValidSort(s ProductSort) bool {
	_, ok := productOrderBy[s]
	return ok
}

const productColumns = `p.id, p.account_id, p.category_id, c.name AS category_name, p.name, p.description, p.image_url,
	p.base_price, p.promotional_price, p.popularity, p.rating, p.active, p.created_at`

const productFrom = `FROM products p
JOIN categories c ON c.id = p.category_id AND c.account_id = p.account_id`

const offeredFlavorSQL = `SELECT 1 FROM product_flavors pf
	JOIN flavors f ON f.id = pf.flavor_id AND f.account_id = pf.account_id AND f.active
	WHERE pf.product_id = p.id AND pf.account_id = p.account_id`

const offeredSizeSQL = `SELECT 1 FROM product_sizes ps
	JOIN sizes s ON s.id = ps.size_id AND s.account_id = ps.account_id AND s.active
	WHERE ps.product_id = p.id AND ps.account_id = p.account_id`

const productFilterWhere = `WHERE p.account_id = $1 AND p.active
  AND ($2::text IS NULL OR p.name ILIKE $2 ESCAPE '\' OR p.description ILIKE $2 ESCAPE '\')
  AND ($3::bigint IS NULL OR p.category_id = $3)
  AND ($4::bigint IS NULL OR EXISTS (` + offeredFlavorSQL + ` AND pf.flavor_id = $4))
  AND ($5::bigint IS NULL OR EXISTS (` + offeredSizeSQL + ` AND ps.size_id = $5))
  AND ($6::numeric IS NULL OR ` + effectivePriceSQL + ` >= $6)
  AND ($7::numeric IS NULL OR ` + effectivePriceSQL + ` <= $7)
  AND (NOT $8::boolean OR (p.promotional_price > 0 AND p.promotional_price < p.base_price))`

type ListProductsParams struct {
	AccountID     int64
	Search        pgtype.Text
	CategoryID    pgtype.Int8
	FlavorID      pgtype.Int8
	SizeID        pgtype.Int8
	MinPrice      pgtype.Numeric
	MaxPrice      pgtype.Numeric
	OnlyPromotion bool
	Sort          ProductSort
	Limit         int32
	Offset        int32
}

func (p ListProductsParams) filterArgs() []interface{} {
	return []interface{}{
		p.AccountID,
		p.Search,
		p.CategoryID,
		p.FlavorID,
		p.SizeID,
		p.MinPrice,
		p.MaxPrice,
		p.OnlyPromotion,
	}
}

// LikePattern wraps a user search term for ILIKE, escaping its wildcards.
func LikePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

func listProductsSQL(sort ProductSort) (string, error) {
	orderBy, ok := productOrderBy[sort]
	if !ok {
		return "", fmt.Errorf("unknown product sort %q", sort)
	}
	return `-- name: ListProducts :many
SELECT ` + productColumns + `
` + productFrom + `
` + productFilterWhere + `
ORDER BY ` + orderBy + `
LIMIT $9 OFFSET $10`, nil
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	query, err := listProductsSQL(arg.Sort)
	if err != nil {
		return nil, err
	}
	args := append(arg.filterArgs(), arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

const countProducts = `-- name: CountProducts :one
SELECT count(*)
` + productFrom + `
` + productFilterWhere

func (q *Queries) CountProducts(ctx context.Context, arg ListProductsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countProducts, arg.filterArgs()...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getProduct = `-- name: GetProduct :one
SELECT ` + productColumns + `
` + productFrom + `
WHERE p.account_id = $1 AND p.id = $2 AND p.active`

type GetProductParams struct {
	AccountID int64
	ID        int64
}

func (q *Queries) GetProduct(ctx context.Context, arg GetProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, arg.AccountID, arg.ID)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const listProductFlavors = `-- name: ListProductFlavors :many
SELECT f.id, f.name
FROM product_flavors pf
JOIN flavors f ON f.id = pf.flavor_id AND f.account_id = pf.account_id AND f.active
WHERE pf.account_id = $1 AND pf.product_id = $2
ORDER BY f.name ASC, f.id ASC`

func (q *Queries) ListProductFlavors(ctx context.Context, arg GetProductParams) ([]Flavor, error) {
	rows, err := q.db.Query(ctx, listProductFlavors, arg.AccountID, arg.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Flavor{}
	for rows.Next() {
		var i Flavor
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProductSizes = `-- name: ListProductSizes :many
SELECT s.id, s.name, s.price_modifier
FROM product_sizes ps
JOIN sizes s ON s.id = ps.size_id AND s.account_id = ps.account_id AND s.active
WHERE ps.account_id = $1 AND ps.product_id = $2
ORDER BY s.price_modifier ASC, s.id ASC`

func (q *Queries) ListProductSizes(ctx context.Context, arg GetProductParams) ([]Size, error) {
	rows, err := q.db.Query(ctx, listProductSizes, arg.AccountID, arg.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Size{}
	for rows.Next() {
		var i Size
		if err := rows.Scan(&i.ID, &i.Name, &i.PriceModifier); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Score: 3 same category and a shared flavor, 2 same category, 1 shared
// flavor, 0 otherwise. Only positive scores are returned.
const listRelatedProducts = `-- name: ListRelatedProducts :many
WITH src AS (
  SELECT id, account_id, category_id FROM products
  WHERE account_id = $1 AND id = $2 AND active
), src_flavors AS (
  SELECT pf.flavor_id FROM product_flavors pf
  JOIN src ON pf.product_id = src.id AND pf.account_id = src.account_id
  JOIN flavors f ON f.id = pf.flavor_id AND f.account_id = pf.account_id AND f.active
), scored AS (
  SELECT ` + productColumns + `,
    CASE
      WHEN p.category_id = src.category_id
        AND EXISTS (` + offeredFlavorSQL + ` AND pf.flavor_id IN (SELECT flavor_id FROM src_flavors)) THEN 3
      WHEN p.category_id = src.category_id THEN 2
      WHEN EXISTS (` + offeredFlavorSQL + ` AND pf.flavor_id IN (SELECT flavor_id FROM src_flavors)) THEN 1
      ELSE 0
    END AS match_score
  ` + productFrom + `
  CROSS JOIN src
  WHERE p.account_id = src.account_id AND p.active AND p.id <> src.id
)
SELECT * FROM scored
WHERE match_score > 0
ORDER BY match_score DESC, popularity DESC, rating DESC, id ASC
LIMIT $3`

type ListRelatedProductsParams struct {
	AccountID int64
	SourceID  int64
	Limit     int32
}

func (q *Queries) ListRelatedProducts(ctx context.Context, arg ListRelatedProductsParams) ([]RelatedProduct, error) {
	rows, err := q.db.Query(ctx, listRelatedProducts, arg.AccountID, arg.SourceID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RelatedProduct{}
	for rows.Next() {
		var i RelatedProduct
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.CategoryID,
			&i.CategoryName,
			&i.Name,
			&i.Description,
			&i.ImageUrl,
			&i.BasePrice,
			&i.PromotionalPrice,
			&i.Popularity,
			&i.Rating,
			&i.Active,
			&i.CreatedAt,
			&i.MatchScore,
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

const listPopularProducts = `-- name: ListPopularProducts :many
SELECT ` + productColumns + `
` + productFrom + `
WHERE p.account_id = $1 AND p.active AND p.id <> $2 AND NOT (p.id = ANY($3::bigint[]))
ORDER BY p.popularity DESC, p.rating DESC, p.id ASC
LIMIT $4`

type ListPopularProductsParams struct {
	AccountID  int64
	SourceID   int64
	ExcludeIDs []int64
	Limit      int32
}

func (q *Queries) ListPopularProducts(ctx context.Context, arg ListPopularProductsParams) ([]Product, error) {
	exclude := arg.ExcludeIDs
	if exclude == nil {
		exclude = []int64{}
	}
	rows, err := q.db.Query(ctx, listPopularProducts, arg.AccountID, arg.SourceID, exclude, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func scanProduct(row pgx.Row, i *Product) error {
	return row.Scan(
		&i.ID,
		&i.AccountID,
		&i.CategoryID,
		&i.CategoryName,
		&i.Name,
		&i.Description,
		&i.ImageUrl,
		&i.BasePrice,
		&i.PromotionalPrice,
		&i.Popularity,
		&i.Rating,
		&i.Active,
		&i.CreatedAt,
	)
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := scanProduct(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
