package combinations

import (
	"time"
)

// Combination represents a specific product variant (e.g. size and colour)
// tracked with its own stock counter. Combination tracking is mutually
// exclusive with simple and multi-warehouse tracking.
type Combination struct {
	ID                  int64       `json:"id"`
	ProductID           int64       `json:"product_id"`
	SKU                 string      `json:"sku"`
	StockQuantity       int         `json:"stock_quantity"`
	NotifyQuantityBelow int         `json:"notify_quantity_below"`
	Components          []Component `json:"components,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Component links a combination to a bundled product and the quantity of it
// consumed per unit sold.
type Component struct {
	ID            int64 `json:"id"`
	CombinationID int64 `json:"combination_id"`
	ProductID     int64 `json:"product_id"`
	Quantity      int   `json:"quantity"`
}
