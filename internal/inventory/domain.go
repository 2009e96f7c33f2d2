package inventory

import (
	"errors"
	"time"
)

// WarehouseRecord tracks stock and reserved counters for one product in one
// warehouse. Available-to-promise is StockQuantity - ReservedQuantity; the
// engine tolerates reserved exceeding stock as an explicit overcommit.
type WarehouseRecord struct {
	ProductID        int64
	WarehouseID      int64
	StockQuantity    int
	ReservedQuantity int
	UpdatedAt        time.Time
}

// Available returns the quantity sellable without overcommitting.
func (r WarehouseRecord) Available() int {
	return r.StockQuantity - r.ReservedQuantity
}

// HistoryEntry is an append-only stock ledger record. Entries are never
// mutated or deleted; the warehouse counters are a materialised projection of
// this ledger.
type HistoryEntry struct {
	ID            int64
	ProductID     int64
	WarehouseID   int64 // 0 when the movement is not warehouse-scoped
	CombinationID int64 // 0 when the product is not tracked by combination
	Delta         int
	StockQuantity int // resulting quantity after the adjustment
	Message       string
	RefID         string
	CreatedAt     time.Time
}

// HistoryFilter narrows ledger queries. Zero fields are ignored.
type HistoryFilter struct {
	ProductID     int64
	WarehouseID   int64
	CombinationID int64
	Page          int
	PerPage       int
}

// ComponentRef points at a bundle component product and its per-unit
// quantity multiplier.
type ComponentRef struct {
	ProductID int64
	Quantity  int
}

// Selection identifies the variant and bundle components an adjustment
// applies to. CombinationID resolves the combination record for products
// tracked by attribute combination; Components lists bundle products to
// adjust recursively.
type Selection struct {
	CombinationID int64
	Components    []ComponentRef
}

// ShipmentItem is the warehouse-nominated quantity a booking reversal
// operates on.
type ShipmentItem struct {
	ID          int64
	ShipmentID  int64
	ProductID   int64
	WarehouseID int64
	Quantity    int
}

// ShipmentInfo carries the shipment state relevant to booking reversal.
type ShipmentInfo struct {
	ID        int64
	ShippedAt *time.Time
}

// Settings groups engine configuration that the host injects explicitly.
type Settings struct {
	// AllowRepublish re-enables visibility or purchasability once
	// availability recovers above the minimum threshold.
	AllowRepublish bool
	// MaxBundleDepth caps recursive bundle component adjustment.
	MaxBundleDepth int
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{AllowRepublish: true, MaxBundleDepth: 10}
}

// AdjustmentInput describes a signed stock adjustment request.
type AdjustmentInput struct {
	ProductID int64
	Delta     int
	Selection Selection
	Message   string
	RefID     string
	ActorID   int64
}

// ErrInvalidQuantity indicates a quantity violating an operation's sign
// precondition.
var ErrInvalidQuantity = errors.New("inventory: invalid quantity")

// ErrProductRequired indicates a missing product reference.
var ErrProductRequired = errors.New("inventory: product required")

// ErrBundleDepthExceeded indicates a bundle component graph deeper than the
// configured cap, which would otherwise recurse indefinitely.
var ErrBundleDepthExceeded = errors.New("inventory: bundle depth exceeded")

// ErrRecordNotFound indicates a missing warehouse inventory row.
var ErrRecordNotFound = errors.New("inventory: warehouse record not found")
