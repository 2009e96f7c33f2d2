package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StockBooker is the slice of the allocation engine the shipment lifecycle
// needs. Booking consumes reserved stock when a shipment goes out; reversal
// puts the quantity back when a shipped shipment is deleted.
type StockBooker interface {
	BookReservedInventory(ctx context.Context, productID, warehouseID int64, quantity int, message string) error
	ReverseBookedInventory(ctx context.Context, productID, shipmentItemID int64, message string) (int, error)
}

// Service drives the shipment lifecycle.
type Service struct {
	repo   Repository
	stock  StockBooker
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, stock StockBooker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, stock: stock, logger: logger}
}

func (s *Service) Create(ctx context.Context, shipment Shipment) (Shipment, error) {
	if len(shipment.Items) == 0 {
		return Shipment{}, ErrNoItems
	}
	for _, item := range shipment.Items {
		if item.ProductID <= 0 || item.WarehouseID <= 0 || item.Quantity <= 0 {
			return Shipment{}, fmt.Errorf("%w: items require product, warehouse and positive quantity", ErrNoItems)
		}
	}
	return s.repo.Create(ctx, shipment)
}

func (s *Service) Get(ctx context.Context, id int64) (Shipment, error) {
	return s.repo.Get(ctx, id)
}

// Ship marks the shipment shipped and books the reserved quantities out of
// the nominated warehouses. Each item books a negative quantity so reserved
// and stock both decrease.
func (s *Service) Ship(ctx context.Context, id int64) (Shipment, error) {
	shipment, err := s.repo.Get(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if shipment.ShippedAt != nil {
		return Shipment{}, ErrAlreadyShipped
	}
	now := time.Now()
	if err := s.repo.MarkShipped(ctx, id, now); err != nil {
		return Shipment{}, err
	}
	message := fmt.Sprintf("Booked inventory for shipment #%d", id)
	for _, item := range shipment.Items {
		if err := s.stock.BookReservedInventory(ctx, item.ProductID, item.WarehouseID, -item.Quantity, message); err != nil {
			return Shipment{}, fmt.Errorf("book shipment item %d: %w", item.ID, err)
		}
	}
	shipment.ShippedAt = &now
	return shipment, nil
}

// Deliver records the delivery timestamp.
func (s *Service) Deliver(ctx context.Context, id int64) error {
	shipment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if shipment.ShippedAt == nil {
		return fmt.Errorf("shipment %d has not shipped", id)
	}
	return s.repo.MarkDelivered(ctx, id, time.Now())
}

// Delete removes a shipment. For shipped shipments the booked quantities flow
// back into warehouse stock before the rows go away; the reversal quietly
// returns zero for anything that cannot be reversed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	shipment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Reversed booking for deleted shipment #%d", id)
	for _, item := range shipment.Items {
		returned, err := s.stock.ReverseBookedInventory(ctx, item.ProductID, item.ID, message)
		if err != nil {
			return fmt.Errorf("reverse shipment item %d: %w", item.ID, err)
		}
		if returned > 0 {
			s.logger.Info("returned booked quantity",
				slog.Int64("shipment_id", id),
				slog.Int64("product_id", item.ProductID),
				slog.Int("quantity", returned))
		}
	}
	return s.repo.Delete(ctx, id)
}
