package fulfillment

import (
	"context"

	"github.com/meridian-commerce/meridian/internal/inventory"
)

// InventoryAdapter exposes shipment state to the allocation engine without
// the engine importing this package.
type InventoryAdapter struct {
	repo Repository
}

// NewInventoryAdapter constructs the adapter.
func NewInventoryAdapter(repo Repository) *InventoryAdapter {
	return &InventoryAdapter{repo: repo}
}

func (a *InventoryAdapter) Shipment(ctx context.Context, id int64) (inventory.ShipmentInfo, error) {
	shipment, err := a.repo.Get(ctx, id)
	if err != nil {
		return inventory.ShipmentInfo{}, err
	}
	return inventory.ShipmentInfo{ID: shipment.ID, ShippedAt: shipment.ShippedAt}, nil
}

func (a *InventoryAdapter) Item(ctx context.Context, id int64) (inventory.ShipmentItem, error) {
	item, err := a.repo.Item(ctx, id)
	if err != nil {
		return inventory.ShipmentItem{}, err
	}
	return inventory.ShipmentItem{
		ID:          item.ID,
		ShipmentID:  item.ShipmentID,
		ProductID:   item.ProductID,
		WarehouseID: item.WarehouseID,
		Quantity:    item.Quantity,
	}, nil
}
