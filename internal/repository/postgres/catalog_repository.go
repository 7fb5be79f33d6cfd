package postgres

import (
	"context"
	"fmt"

	"github.com/sonuudigital/lovecakes/internal/repository"
)

type CatalogQuerier interface {
	CountProducts(ctx context.Context, arg repository.ListProductsParams) (int64, error)
	GetProduct(ctx context.Context, arg repository.GetProductParams) (repository.Product, error)
	ListPopularProducts(ctx context.Context, arg repository.ListPopularProductsParams) ([]repository.Product, error)
	ListProductFlavors(ctx context.Context, arg repository.GetProductParams) ([]repository.Flavor, error)
	ListProductSizes(ctx context.Context, arg repository.GetProductParams) ([]repository.Size, error)
	ListProducts(ctx context.Context, arg repository.ListProductsParams) ([]repository.Product, error)
	ListRelatedProducts(ctx context.Context, arg repository.ListRelatedProductsParams) ([]repository.RelatedProduct, error)
}

type ProductDetail struct {
	Product repository.Product
	Flavors []repository.Flavor
	Sizes   []repository.Size
}

type CatalogRepository struct {
	q CatalogQuerier
}

func NewCatalogRepository(db repository.DBTX) *CatalogRepository {
	return &CatalogRepository{q: repository.New(db)}
}

func NewCatalogRepositoryWithQuerier(q CatalogQuerier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// ListProducts returns one page and the total number of matches. An empty
// page past the end still reports the real total.
func (r *CatalogRepository) ListProducts(ctx context.Context, arg repository.ListProductsParams) ([]repository.Product, int64, error) {
	total, err := r.q.CountProducts(ctx, arg)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	if total == 0 || int64(arg.Offset) >= total {
		return []repository.Product{}, total, nil
	}

	products, err := r.q.ListProducts(ctx, arg)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *CatalogRepository) GetProductDetail(ctx context.Context, accountID, productID int64) (ProductDetail, error) {
	key := repository.GetProductParams{AccountID: accountID, ID: productID}

	product, err := r.q.GetProduct(ctx, key)
	if err != nil {
		return ProductDetail{}, repository.NotFound(err)
	}

	flavors, err := r.q.ListProductFlavors(ctx, key)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("failed to list flavors: %w", err)
	}
	sizes, err := r.q.ListProductSizes(ctx, key)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("failed to list sizes: %w", err)
	}

	return ProductDetail{Product: product, Flavors: flavors, Sizes: sizes}, nil
}

func (r *CatalogRepository) ListRelatedProducts(ctx context.Context, accountID, productID int64, limit int32) ([]repository.RelatedProduct, error) {
	if _, err := r.q.GetProduct(ctx, repository.GetProductParams{AccountID: accountID, ID: productID}); err != nil {
		return nil, repository.NotFound(err)
	}

	primary, err := r.q.ListRelatedProducts(ctx, repository.ListRelatedProductsParams{
		AccountID: accountID,
		SourceID:  productID,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	if int32(len(primary)) >= limit {
		return primary, nil
	}

	exclude := make([]int64, 0, len(primary))
	for _, p := range primary {
		exclude = append(exclude, p.ID)
	}
	fallback, err := r.q.ListPopularProducts(ctx, repository.ListPopularProductsParams{
		AccountID:  accountID,
		SourceID:   productID,
		ExcludeIDs: exclude,
		Limit:      limit - int32(len(primary)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback products: %w", err)
	}

	return mergeRelated(primary, fallback, int(limit)), nil
}

// mergeRelated appends fallback rows after the scored ones, skipping
// duplicates, until limit rows are collected.
func mergeRelated(primary []repository.RelatedProduct, fallback []repository.Product, limit int) []repository.RelatedProduct {
	out := make([]repository.RelatedProduct, 0, limit)
	seen := make(map[int64]struct{}, limit)

	for _, p := range primary {
		if len(out) == limit {
			return out
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	for _, p := range fallback {
		if len(out) == limit {
			break
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, repository.RelatedProduct{Product: p})
	}
	return out
}
