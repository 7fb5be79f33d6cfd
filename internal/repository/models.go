package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Flavor struct {
	ID   int64
	Name string
}

type Size struct {
	ID            int64
	Name          string
	PriceModifier pgtype.Numeric
}

type Product struct {
	ID               int64
	AccountID        int64
	CategoryID       int64
	CategoryName     string
	Name             string
	Description      pgtype.Text
	ImageUrl         pgtype.Text
	BasePrice        pgtype.Numeric
	PromotionalPrice pgtype.Numeric
	Popularity       int32
	Rating           pgtype.Numeric
	Active           bool
	CreatedAt        pgtype.Timestamptz
}

type RelatedProduct struct {
	Product
	MatchScore int32
}

type Cart struct {
	ID        int64
	AccountID int64
	UserID    int64
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type CartItem struct {
	ID        int64
	AccountID int64
	CartID    int64
	ProductID int64
	FlavorID  pgtype.Int8
	SizeID    pgtype.Int8
	Quantity  int32
	UnitPrice pgtype.Numeric
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type ListCartItemsRow struct {
	CartItem
	ProductName string
	FlavorName  pgtype.Text
	SizeName    pgtype.Text
}

type OutboxEvent struct {
	ID          pgtype.UUID
	AggregateID string
	EventName   string
	Payload     []byte
	Status      string
	CreatedAt   pgtype.Timestamptz
	PublishedAt pgtype.Timestamptz
}
