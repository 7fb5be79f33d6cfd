package events

import "time"

const (
	CartExchangeName          = "cart.events"
	CartItemAddedRoutingKey   = "cart.item.added"
	CartItemRemovedRoutingKey = "cart.item.removed"
	CartItemAddedEventName    = CartExchangeName + ":" + CartItemAddedRoutingKey
	CartItemRemovedEventName  = CartExchangeName + ":" + CartItemRemovedRoutingKey
)

// CartItemEvent is the payload of both cart item events. For removals the
// quantity and unit price are the values the line had when it was deleted.
type CartItemEvent struct {
	AccountID  int64     `json:"accountId"`
	UserID     int64     `json:"userId"`
	CartID     int64     `json:"cartId"`
	ItemID     int64     `json:"itemId"`
	ProductID  int64     `json:"productId"`
	FlavorID   *int64    `json:"flavorId"`
	SizeID     *int64    `json:"sizeId"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  string    `json:"unitPrice"`
	Merged     bool      `json:"merged,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
