package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sonuudigital/lovecakes/internal/repository"
)

const (
	maxSearchLength = 100

	defaultPage     = 1
	defaultPageSize = 12
	maxPageSize     = 48

	defaultRelatedLimit = 4
	maxRelatedLimit     = 12
)

// maxPrice is the largest value a numeric(10,2) price column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// ProductQuery is the parsed query string of GET /product.
type ProductQuery struct {
	Search        string
	CategoryID    *int64
	FlavorID      *int64
	SizeID        *int64
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	OnlyPromotion bool
	Sort          repository.ProductSort
	Page          int32
	PageSize      int32
}

func (q ProductQuery) Params(accountID int64) repository.ListProductsParams {
	params := repository.ListProductsParams{
		AccountID:     accountID,
		CategoryID:    repository.Int8(q.CategoryID),
		FlavorID:      repository.Int8(q.FlavorID),
		SizeID:        repository.Int8(q.SizeID),
		MinPrice:      repository.NullableNumeric(q.MinPrice),
		MaxPrice:      repository.NullableNumeric(q.MaxPrice),
		OnlyPromotion: q.OnlyPromotion,
		Sort:          q.Sort,
		Limit:         q.PageSize,
		Offset:        (q.Page - 1) * q.PageSize,
	}
	if q.Search != "" {
		params.Search.String = repository.LikePattern(q.Search)
		params.Search.Valid = true
	}
	return params
}

func ParseProductQuery(values url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Search:   strings.TrimSpace(values.Get("search")),
		Sort:     repository.SortRelevance,
		Page:     defaultPage,
		PageSize: defaultPageSize,
	}
	if !utf8.ValidString(q.Search) {
		return ProductQuery{}, fmt.Errorf("search must be valid UTF-8")
	}
	if utf8.RuneCountInString(q.Search) > maxSearchLength {
		return ProductQuery{}, fmt.Errorf("search must be at most %d characters", maxSearchLength)
	}

	var err error
	if q.CategoryID, err = optionalID(values, "categoryId"); err != nil {
		return ProductQuery{}, err
	}
	if q.FlavorID, err = optionalID(values, "flavorId"); err != nil {
		return ProductQuery{}, err
	}
	if q.SizeID, err = optionalID(values, "sizeId"); err != nil {
		return ProductQuery{}, err
	}
	if q.MinPrice, err = optionalPrice(values, "minPrice"); err != nil {
		return ProductQuery{}, err
	}
	if q.MaxPrice, err = optionalPrice(values, "maxPrice"); err != nil {
		return ProductQuery{}, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return ProductQuery{}, fmt.Errorf("minPrice must not exceed maxPrice")
	}

	if raw := values.Get("onlyPromotion"); raw != "" {
		if q.OnlyPromotion, err = strconv.ParseBool(raw); err != nil {
			return ProductQuery{}, fmt.Errorf("onlyPromotion must be true or false")
		}
	}

	if raw := values.Get("sort"); raw != "" {
		q.Sort = repository.ProductSort(strings.ToLower(raw))
		if !repository.ValidSort(q.Sort) {
			return ProductQuery{}, fmt.Errorf("unknown sort %q", raw)
		}
	}

	if q.Page, err = boundedInt(values, "page", defaultPage, 1, 1<<20); err != nil {
		return ProductQuery{}, err
	}
	if q.PageSize, err = boundedInt(values, "pageSize", defaultPageSize, 1, maxPageSize); err != nil {
		return ProductQuery{}, err
	}
	return q, nil
}

func ParseRelatedLimit(values url.Values) (int32, error) {
	return boundedInt(values, "limit", defaultRelatedLimit, 1, maxRelatedLimit)
}

// ParseID parses a positive integer identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return id, nil
}

func optionalID(values url.Values, name string) (*int64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer", name)
	}
	return &id, nil
}

func optionalPrice(values url.Values, name string) (*decimal.Decimal, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("%s must be a non-negative decimal", name)
	}
	if d.GreaterThan(maxPrice) {
		return nil, fmt.Errorf("%s must be at most %s", name, maxPrice.StringFixed(2))
	}
	return &d, nil
}

func boundedInt(values url.Values, name string, def, minVal, maxVal int32) (int32, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || int32(n) < minVal || int32(n) > maxVal {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, minVal, maxVal)
	}
	return int32(n), nil
}
