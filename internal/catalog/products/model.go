package products

import (
	"time"
)

// InventoryMethod enumerates how stock is tracked for a product.
type InventoryMethod string

const (
	// InventoryMethodNone disables stock tracking.
	InventoryMethodNone InventoryMethod = "NONE"
	// InventoryMethodSimple tracks a single stock counter, optionally split
	// across warehouses.
	InventoryMethodSimple InventoryMethod = "SIMPLE"
	// InventoryMethodByCombination tracks stock per attribute combination.
	InventoryMethodByCombination InventoryMethod = "BY_COMBINATION"
)

// IsValid reports whether the method is a known value.
func (m InventoryMethod) IsValid() bool {
	switch m {
	case InventoryMethodNone, InventoryMethodSimple, InventoryMethodByCombination:
		return true
	default:
		return false
	}
}

// LowStockAction enumerates the configured response when availability drops
// below the minimum stock threshold.
type LowStockAction string

const (
	// LowStockActionNothing leaves the product untouched.
	LowStockActionNothing LowStockAction = "NOTHING"
	// LowStockActionDisableBuyButton blocks purchase without hiding the product.
	LowStockActionDisableBuyButton LowStockAction = "DISABLE_BUY_BUTTON"
	// LowStockActionUnpublish hides the product entirely.
	LowStockActionUnpublish LowStockAction = "UNPUBLISH"
)

// IsValid reports whether the action is a known value.
func (a LowStockAction) IsValid() bool {
	switch a {
	case LowStockActionNothing, LowStockActionDisableBuyButton, LowStockActionUnpublish:
		return true
	default:
		return false
	}
}

// Product represents a sellable item together with its inventory policy.
type Product struct {
	ID                  int64           `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Price               float64         `json:"price"`
	InventoryMethod     InventoryMethod `json:"inventory_method"`
	StockQuantity       int             `json:"stock_quantity"`
	MinStockQuantity    int             `json:"min_stock_quantity"`
	NotifyQuantityBelow int             `json:"notify_quantity_below"`
	LowStockAction      LowStockAction  `json:"low_stock_action"`
	MultiWarehouse      bool            `json:"multi_warehouse"`
	Published           bool            `json:"published"`
	BuyButtonDisabled   bool            `json:"buy_button_disabled"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
