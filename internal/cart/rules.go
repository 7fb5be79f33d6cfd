// Package cart holds the rules for adding products to a cart that do not
// need the database.
package cart

import (
	"errors"
	"fmt"
	"slices"
)

const (
	MinItemQuantity = 1
	MaxItemQuantity = 10
)

var (
	ErrInvalidOption    = errors.New("invalid product option")
	ErrOptionRequired   = fmt.Errorf("%w: required", ErrInvalidOption)
	ErrOptionNotOffered = fmt.Errorf("%w: not offered for this product", ErrInvalidOption)
	ErrOptionNotAllowed = fmt.Errorf("%w: product has no options of this kind", ErrInvalidOption)
)

// MergeQuantity adds requested to existing, capped at MaxItemQuantity.
func MergeQuantity(existing, requested int32) (quantity int32, capped bool) {
	sum := existing + requested
	if sum > MaxItemQuantity {
		return MaxItemQuantity, true
	}
	return sum, false
}

func ValidQuantity(q int32) bool {
	return q >= MinItemQuantity && q <= MaxItemQuantity
}

// CheckOption validates a flavor or size choice against what the product
// offers. A product offering options requires one of them; a product
// offering none accepts no choice. kind names the option in errors.
func CheckOption(kind string, offered []int64, chosen *int64) error {
	if len(offered) == 0 {
		if chosen != nil {
			return fmt.Errorf("%s: %w", kind, ErrOptionNotAllowed)
		}
		return nil
	}
	if chosen == nil {
		return fmt.Errorf("%s: %w", kind, ErrOptionRequired)
	}
	if !slices.Contains(offered, *chosen) {
		return fmt.Errorf("%s %d: %w", kind, *chosen, ErrOptionNotOffered)
	}
	return nil
}
