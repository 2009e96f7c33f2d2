package fulfillment

import (
	"errors"
	"time"
)

// Shipment groups warehouse-nominated item quantities leaving the building.
// Booking against inventory happens when the shipment is marked shipped;
// reversal is only possible after that point.
type Shipment struct {
	ID             int64          `json:"id"`
	TrackingNumber string         `json:"tracking_number"`
	ShippedAt      *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	Items          []ShipmentItem `json:"items,omitempty"`
}

// ShipmentItem nominates the warehouse a quantity ships from.
type ShipmentItem struct {
	ID          int64 `json:"id"`
	ShipmentID  int64 `json:"shipment_id"`
	ProductID   int64 `json:"product_id"`
	WarehouseID int64 `json:"warehouse_id"`
	Quantity    int   `json:"quantity"`
}

// ErrAlreadyShipped indicates a repeated ship request.
var ErrAlreadyShipped = errors.New("fulfillment: shipment already shipped")

// ErrNoItems indicates a shipment without items.
var ErrNoItems = errors.New("fulfillment: shipment requires at least one item")
