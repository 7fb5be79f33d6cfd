package handlers

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sonuudigital/lovecakes/internal/pricing"
	"github.com/sonuudigital/lovecakes/internal/repository"
	"github.com/sonuudigital/lovecakes/internal/repository/postgres"
)

type ProductResponse struct {
	ID               int64      `json:"id"`
	AccountID        int64      `json:"accountId"`
	CategoryID       int64      `json:"categoryId"`
	CategoryName     string     `json:"categoryName"`
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	ImageURL         *string    `json:"imageUrl"`
	BasePrice        string     `json:"basePrice"`
	PromotionalPrice *string    `json:"promotionalPrice"`
	CurrentPrice     string     `json:"currentPrice"`
	Popularity       int32      `json:"popularity"`
	Rating           string     `json:"rating"`
	Active           bool       `json:"active"`
	CreatedAt        *time.Time `json:"createdAt"`
}

type RelatedProductResponse struct {
	ProductResponse
	MatchScore int32 `json:"matchScore"`
}

type FlavorResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SizeResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PriceModifier string `json:"priceModifier"`
	CurrentPrice  string `json:"currentPrice"`
}

type ProductDetailResponse struct {
	ProductResponse
	Flavors []FlavorResponse `json:"flavors"`
	Sizes   []SizeResponse   `json:"sizes"`
}

type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Page       int32             `json:"page"`
	PageSize   int32             `json:"pageSize"`
	Total      int64             `json:"total"`
	TotalPages int64             `json:"totalPages"`
}

type RelatedProductsResponse struct {
	Items []RelatedProductResponse `json:"items"`
}

type AddCartItemRequest struct {
	ProductID int64  `json:"productId"`
	FlavorID  *int64 `json:"flavorId"`
	SizeID    *int64 `json:"sizeId"`
	Quantity  int32  `json:"quantity"`
}

type CartItemResponse struct {
	ID          int64      `json:"id"`
	CartID      int64      `json:"cartId"`
	ProductID   int64      `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	FlavorID    *int64     `json:"flavorId"`
	FlavorName  *string    `json:"flavorName,omitempty"`
	SizeID      *int64     `json:"sizeId"`
	SizeName    *string    `json:"sizeName,omitempty"`
	Quantity    int32      `json:"quantity"`
	UnitPrice   string     `json:"unitPrice"`
	LineTotal   string     `json:"lineTotal"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type AddCartItemResponse struct {
	Item           CartItemResponse `json:"item"`
	Merged         bool             `json:"merged"`
	QuantityCapped bool             `json:"quantityCapped"`
}

type CartResponse struct {
	ID        *int64             `json:"id"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int32              `json:"itemCount"`
	Total     string             `json:"total"`
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func toProductResponse(p repository.Product) (ProductResponse, error) {
	base, err := repository.NumericToDecimal(p.BasePrice)
	if err != nil {
		return ProductResponse{}, err
	}
	promo, err := repository.NullableDecimal(p.PromotionalPrice)
	if err != nil {
		return ProductResponse{}, err
	}
	rating, err := repository.NumericToDecimal(p.Rating)
	if err != nil {
		return ProductResponse{}, err
	}

	resp := ProductResponse{
		ID:           p.ID,
		AccountID:    p.AccountID,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Name:         p.Name,
		Description:  textPtr(p.Description),
		ImageURL:     textPtr(p.ImageUrl),
		BasePrice:    pricing.Format(base),
		CurrentPrice: pricing.Format(pricing.Current(base, promo, decimal.Zero)),
		Popularity:   p.Popularity,
		Rating:       pricing.Format(rating),
		Active:       p.Active,
		CreatedAt:    timePtr(p.CreatedAt),
	}
	if promo != nil {
		s := pricing.Format(*promo)
		resp.PromotionalPrice = &s
	}
	return resp, nil
}

func toProductDetailResponse(d postgres.ProductDetail) (ProductDetailResponse, error) {
	product, err := toProductResponse(d.Product)
	if err != nil {
		return ProductDetailResponse{}, err
	}
	base, err := repository.NumericToDecimal(d.Product.BasePrice)
	if err != nil {
		return ProductDetailResponse{}, err
	}
	promo, err := repository.NullableDecimal(d.Product.PromotionalPrice)
	if err != nil {
		return ProductDetailResponse{}, err
	}

	resp := ProductDetailResponse{
		ProductResponse: product,
		Flavors:         make([]FlavorResponse, 0, len(d.Flavors)),
		Sizes:           make([]SizeResponse, 0, len(d.Sizes)),
	}
	for _, f := range d.Flavors {
		resp.Flavors = append(resp.Flavors, FlavorResponse{ID: f.ID, Name: f.Name})
	}
	for _, s := range d.Sizes {
		modifier, err := repository.NumericToDecimal(s.PriceModifier)
		if err != nil {
			return ProductDetailResponse{}, err
		}
		resp.Sizes = append(resp.Sizes, SizeResponse{
			ID:            s.ID,
			Name:          s.Name,
			PriceModifier: pricing.Format(modifier),
			CurrentPrice:  pricing.Format(pricing.Current(base, promo, modifier)),
		})
	}
	return resp, nil
}

func toCartItemResponse(item repository.CartItem) (CartItemResponse, decimal.Decimal, error) {
	unit, err := repository.NumericToDecimal(item.UnitPrice)
	if err != nil {
		return CartItemResponse{}, decimal.Zero, err
	}
	lineTotal := pricing.LineTotal(unit, item.Quantity)

	return CartItemResponse{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		FlavorID:  repository.Int8Ptr(item.FlavorID),
		SizeID:    repository.Int8Ptr(item.SizeID),
		Quantity:  item.Quantity,
		UnitPrice: pricing.Format(unit),
		LineTotal: pricing.Format(lineTotal),
		CreatedAt: timePtr(item.CreatedAt),
		UpdatedAt: timePtr(item.UpdatedAt),
	}, lineTotal, nil
}

func toCartResponse(view postgres.CartView) (CartResponse, error) {
	resp := CartResponse{
		Items: make([]CartItemResponse, 0, len(view.Items)),
	}
	if view.Cart != nil {
		id := view.Cart.ID
		resp.ID = &id
	}

	total := decimal.Zero
	for _, row := range view.Items {
		item, lineTotal, err := toCartItemResponse(row.CartItem)
		if err != nil {
			return CartResponse{}, err
		}
		item.ProductName = row.ProductName
		item.FlavorName = textPtr(row.FlavorName)
		item.SizeName = textPtr(row.SizeName)

		resp.Items = append(resp.Items, item)
		resp.ItemCount += row.Quantity
		total = total.Add(lineTotal)
	}
	resp.Total = pricing.Format(total)
	return resp, nil
}
