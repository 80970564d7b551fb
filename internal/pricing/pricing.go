// Package pricing resolves the unit price to charge for a catalog item.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/models"
)

// ErrItemUnavailable is returned when an inactive item is priced.
var ErrItemUnavailable = errors.New("item is not available")

// Resolver picks the unit price for an order line: the member price when the
// buyer is a member and the item defines one, otherwise the base price.
// It is stateless and safe for concurrent use.
type Resolver struct{}

// Resolve returns the unit price for item given the buyer's membership
// status. Inactive items fail with ErrItemUnavailable.
func (Resolver) Resolve(item *models.Item, isMember bool) (decimal.Decimal, error) {
	if !item.Active {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}
	if isMember && item.MemberPrice != nil {
		return *item.MemberPrice, nil
	}
	return item.Price, nil
}
