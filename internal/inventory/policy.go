package inventory

import (
	"github.com/meridian-commerce/meridian/internal/catalog/products"
)

// StockState holds the product flags the low-stock policy may flip.
type StockState struct {
	Published         bool
	BuyButtonDisabled bool
}

// PolicyInput feeds the low-stock policy. Total is the current availability
// across warehouses (reserved already subtracted).
type PolicyInput struct {
	Total            int
	MinStockQuantity int
	Action           products.LowStockAction
	AllowRepublish   bool
	Current          StockState
}

// ApplyLowStockPolicy derives the desired publish and buy-button flags from
// the current availability. The two actions are mutually exclusive: disabling
// the buy button never touches visibility, unpublishing never touches the buy
// button. Recovery above the threshold only re-enables when AllowRepublish is
// set. Unknown actions leave the state unchanged.
func ApplyLowStockPolicy(in PolicyInput) StockState {
	out := in.Current
	switch in.Action {
	case products.LowStockActionDisableBuyButton:
		if in.Total <= in.MinStockQuantity {
			out.BuyButtonDisabled = true
		} else if in.AllowRepublish {
			out.BuyButtonDisabled = false
		}
	case products.LowStockActionUnpublish:
		if in.Total <= in.MinStockQuantity {
			out.Published = false
		} else if in.AllowRepublish {
			out.Published = true
		}
	}
	return out
}
