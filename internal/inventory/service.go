package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/meridian-commerce/meridian/internal/catalog/combinations"
	"github.com/meridian-commerce/meridian/internal/catalog/products"
	"github.com/meridian-commerce/meridian/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Records(ctx context.Context, productID int64) ([]WarehouseRecord, error)
	AddHistory(ctx context.Context, entry HistoryEntry) error
	History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int, error)
}

// TxRepository exposes the transactional operations used by the allocation
// passes. Row reads lock the touched records for the transaction lifetime.
type TxRepository interface {
	RecordsForUpdate(ctx context.Context, productID int64) ([]WarehouseRecord, error)
	RecordForUpdate(ctx context.Context, productID, warehouseID int64) (WarehouseRecord, error)
	SaveRecords(ctx context.Context, records []WarehouseRecord) error
	InsertHistory(ctx context.Context, entry HistoryEntry) error
}

// CatalogPort exposes the product master data the engine reads and the
// inventory-owned flags it writes back.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (products.Product, error)
	ListTracked(ctx context.Context) ([]products.Product, error)
	UpdateInventory(ctx context.Context, p products.Product) error
}

// CombinationPort resolves and updates attribute combination stock.
type CombinationPort interface {
	Get(ctx context.Context, id int64) (combinations.Combination, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
}

// ShipmentPort resolves shipment state for booking reversal.
type ShipmentPort interface {
	Shipment(ctx context.Context, id int64) (ShipmentInfo, error)
	Item(ctx context.Context, id int64) (ShipmentItem, error)
}

// Notifier dispatches quantity-below-threshold notifications. Dispatch is
// best effort; failures never fail the adjustment.
type Notifier interface {
	QuantityBelow(ctx context.Context, productID, combinationID int64, total int) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the inventory allocation engine. It applies signed quantity
// deltas to product stock, chooses which warehouses absorb the change, keeps
// the stock ledger, and applies the low-stock policy.
type Service struct {
	repo      RepositoryPort
	catalog   CatalogPort
	combos    CombinationPort
	shipments ShipmentPort
	notifier  Notifier
	cache     *AvailabilityCache
	audit     AuditPort
	metrics   *Metrics
	logger    *slog.Logger
	settings  Settings
}

// ServiceDeps groups the collaborators injected into the engine.
type ServiceDeps struct {
	Repo      RepositoryPort
	Catalog   CatalogPort
	Combos    CombinationPort
	Shipments ShipmentPort
	Notifier  Notifier
	Cache     *AvailabilityCache
	Audit     AuditPort
	Metrics   *Metrics
	Logger    *slog.Logger
	Settings  Settings
}

// NewService builds the engine.
func NewService(deps ServiceDeps) *Service {
	if deps.Settings.MaxBundleDepth <= 0 {
		deps.Settings.MaxBundleDepth = DefaultSettings().MaxBundleDepth
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		repo:      deps.Repo,
		catalog:   deps.Catalog,
		combos:    deps.Combos,
		shipments: deps.Shipments,
		notifier:  deps.Notifier,
		cache:     deps.Cache,
		audit:     deps.Audit,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		settings:  deps.Settings,
	}
}

// AdjustInventory applies a signed delta to a product's stock. Positive
// deltas restock, negative deltas consume. Bundle components referenced by
// the selection are adjusted recursively with their quantity multiplier.
func (s *Service) AdjustInventory(ctx context.Context, in AdjustmentInput) error {
	if in.ProductID == 0 {
		return ErrProductRequired
	}
	if in.Delta == 0 {
		return nil
	}
	if in.RefID != "" {
		if _, err := uuid.Parse(in.RefID); err != nil {
			return fmt.Errorf("inventory: invalid ref id: %w", err)
		}
	}
	visited := make(map[int64]bool)
	if err := s.adjust(ctx, in, 0, visited); err != nil {
		return err
	}
	s.bumpCache(ctx)
	s.recordAudit(ctx, in.ActorID, "inventory:adjust", in.ProductID, map[string]any{
		"delta":          in.Delta,
		"combination_id": in.Selection.CombinationID,
		"message":        in.Message,
	})
	return nil
}

func (s *Service) adjust(ctx context.Context, in AdjustmentInput, depth int, visited map[int64]bool) error {
	if depth > s.settings.MaxBundleDepth {
		return ErrBundleDepthExceeded
	}
	if visited[in.ProductID] {
		// Malformed bundle graphs may reference a product twice; adjust it once.
		s.logger.Warn("bundle cycle skipped", slog.Int64("product_id", in.ProductID))
		return nil
	}
	visited[in.ProductID] = true

	product, err := s.catalog.Get(ctx, in.ProductID)
	if err != nil {
		return err
	}

	components := in.Selection.Components

	switch product.InventoryMethod {
	case products.InventoryMethodSimple:
		if err := s.adjustSimple(ctx, product, in); err != nil {
			return err
		}
	case products.InventoryMethodByCombination:
		combo, extra, err := s.adjustCombination(ctx, in)
		if err != nil {
			return err
		}
		if combo && len(components) == 0 {
			components = extra
		}
	default:
		// Untracked products take no stock change.
	}

	for _, comp := range components {
		if comp.ProductID == 0 || comp.Quantity <= 0 {
			continue
		}
		child := AdjustmentInput{
			ProductID: comp.ProductID,
			Delta:     in.Delta * comp.Quantity,
			Message:   in.Message,
			RefID:     in.RefID,
			ActorID:   in.ActorID,
		}
		if err := s.adjust(ctx, child, depth+1, visited); err != nil {
			return err
		}
	}
	return nil
}

// adjustSimple handles products tracked with a single stock counter,
// delegating to the reservation passes when multiple warehouses are enabled.
func (s *Service) adjustSimple(ctx context.Context, product products.Product, in AdjustmentInput) error {
	var total int
	if product.MultiWarehouse {
		if in.Delta < 0 {
			if err := s.ReserveInventory(ctx, product.ID, in.Delta); err != nil {
				return err
			}
		} else {
			if err := s.UnblockReservedInventory(ctx, product.ID, in.Delta); err != nil {
				return err
			}
		}
		var err error
		total, err = s.TotalStockQuantity(ctx, product, true, 0)
		if err != nil {
			return err
		}
		if err := s.repo.AddHistory(ctx, HistoryEntry{
			ProductID:     product.ID,
			Delta:         in.Delta,
			StockQuantity: total,
			Message:       in.Message,
			RefID:         in.RefID,
		}); err != nil {
			return err
		}
	} else {
		product.StockQuantity += in.Delta
		total = product.StockQuantity
		if err := s.repo.AddHistory(ctx, HistoryEntry{
			ProductID:     product.ID,
			Delta:         in.Delta,
			StockQuantity: product.StockQuantity,
			Message:       in.Message,
			RefID:         in.RefID,
		}); err != nil {
			return err
		}
	}

	state := ApplyLowStockPolicy(PolicyInput{
		Total:            total,
		MinStockQuantity: product.MinStockQuantity,
		Action:           product.LowStockAction,
		AllowRepublish:   s.settings.AllowRepublish,
		Current:          StockState{Published: product.Published, BuyButtonDisabled: product.BuyButtonDisabled},
	})
	product.Published = state.Published
	product.BuyButtonDisabled = state.BuyButtonDisabled
	if err := s.catalog.UpdateInventory(ctx, product); err != nil {
		return err
	}

	if in.Delta < 0 && total < product.NotifyQuantityBelow {
		s.notifyQuantityBelow(ctx, product.ID, 0, total)
	}
	s.metrics.IncAdjustment(string(product.InventoryMethod))
	return nil
}

// adjustCombination resolves the combination for the selection and applies
// the delta to its counter. A missing combination is a deliberate no-op.
// The bool result reports whether a combination was found; the returned
// components are its bundle definition.
func (s *Service) adjustCombination(ctx context.Context, in AdjustmentInput) (bool, []ComponentRef, error) {
	if in.Selection.CombinationID == 0 || s.combos == nil {
		return false, nil, nil
	}
	combo, err := s.combos.Get(ctx, in.Selection.CombinationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	if combo.ProductID != in.ProductID {
		return false, nil, nil
	}

	combo.StockQuantity += in.Delta
	if err := s.combos.UpdateStock(ctx, combo.ID, combo.StockQuantity); err != nil {
		return false, nil, err
	}
	if err := s.repo.AddHistory(ctx, HistoryEntry{
		ProductID:     in.ProductID,
		CombinationID: combo.ID,
		Delta:         in.Delta,
		StockQuantity: combo.StockQuantity,
		Message:       in.Message,
		RefID:         in.RefID,
	}); err != nil {
		return false, nil, err
	}
	if in.Delta < 0 && combo.StockQuantity < combo.NotifyQuantityBelow {
		s.notifyQuantityBelow(ctx, in.ProductID, combo.ID, combo.StockQuantity)
	}
	s.metrics.IncAdjustment(string(products.InventoryMethodByCombination))

	refs := make([]ComponentRef, 0, len(combo.Components))
	for _, c := range combo.Components {
		refs = append(refs, ComponentRef{ProductID: c.ProductID, Quantity: c.Quantity})
	}
	return true, refs, nil
}

// ReserveInventory commits quantity to unfulfilled orders across warehouses.
// Warehouses with the most available-to-promise serve first; when demand
// exceeds total availability the remainder is force-reserved against the
// first warehouse in that ordering, letting reserved exceed stock rather
// than blocking the sale.
func (s *Service) ReserveInventory(ctx context.Context, productID int64, quantity int) error {
	if productID == 0 {
		return ErrProductRequired
	}
	if quantity >= 0 {
		return fmt.Errorf("%w: reserve quantity must be negative", ErrInvalidQuantity)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		records, err := tx.RecordsForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		overcommitted := allocateReservation(records, -quantity)
		if overcommitted {
			s.metrics.IncOvercommit()
		}
		return tx.SaveRecords(ctx, records)
	})
	if err != nil {
		return err
	}
	s.metrics.IncReservation()
	s.bumpCache(ctx)
	s.recordAudit(ctx, 0, "inventory:reserve", productID, map[string]any{"qty": quantity})
	return nil
}

// allocateReservation runs the greedy two-pass allocation over records,
// mutating reserved counters in place. It reports whether the second pass
// overcommitted the first record.
func allocateReservation(records []WarehouseRecord, qty int) bool {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Available() > records[j].Available()
	})
	remaining := qty
	for i := range records {
		use := min(max(records[i].Available(), 0), remaining)
		records[i].ReservedQuantity += use
		remaining -= use
		if remaining <= 0 {
			break
		}
	}
	if remaining > 0 {
		records[0].ReservedQuantity += remaining
		return true
	}
	return false
}

// UnblockReservedInventory releases previously reserved quantity, relieving
// the most over-reserved warehouse first. Quantity returned beyond what was
// ever reserved is treated as new incoming stock on the first record.
func (s *Service) UnblockReservedInventory(ctx context.Context, productID int64, quantity int) error {
	if productID == 0 {
		return ErrProductRequired
	}
	if quantity < 0 {
		return fmt.Errorf("%w: unblock quantity must be non-negative", ErrInvalidQuantity)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		records, err := tx.RecordsForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		releaseReservation(records, quantity)
		return tx.SaveRecords(ctx, records)
	})
	if err != nil {
		return err
	}
	s.metrics.IncRelease()
	s.bumpCache(ctx)
	s.recordAudit(ctx, 0, "inventory:unblock", productID, map[string]any{"qty": quantity})
	return nil
}

// releaseReservation walks records in descending reserved order (stock
// breaks ties) and drains reserved counters; any surplus lands on the first
// record's stock.
func releaseReservation(records []WarehouseRecord, qty int) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ReservedQuantity != records[j].ReservedQuantity {
			return records[i].ReservedQuantity > records[j].ReservedQuantity
		}
		return records[i].StockQuantity > records[j].StockQuantity
	})
	remaining := qty
	for i := range records {
		use := min(records[i].ReservedQuantity, remaining)
		records[i].ReservedQuantity -= use
		remaining -= use
		if remaining <= 0 {
			break
		}
	}
	if remaining > 0 {
		records[0].StockQuantity += remaining
	}
}

// BookReservedInventory converts reserved quantity into a physical stock
// decrement against a nominated warehouse, typically at shipment time. The
// call is a silent no-op for products outside multi-warehouse simple
// tracking or without a record for the warehouse.
func (s *Service) BookReservedInventory(ctx context.Context, productID, warehouseID int64, quantity int, message string) error {
	if productID == 0 {
		return ErrProductRequired
	}
	if quantity >= 0 {
		return fmt.Errorf("%w: booking quantity must be negative", ErrInvalidQuantity)
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}
	if product.InventoryMethod != products.InventoryMethodSimple || !product.MultiWarehouse {
		return nil
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rec, err := tx.RecordForUpdate(ctx, productID, warehouseID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil
			}
			return err
		}
		rec.ReservedQuantity = max(rec.ReservedQuantity+quantity, 0)
		rec.StockQuantity += quantity
		if err := tx.SaveRecords(ctx, []WarehouseRecord{rec}); err != nil {
			return err
		}
		return tx.InsertHistory(ctx, HistoryEntry{
			ProductID:     productID,
			WarehouseID:   warehouseID,
			Delta:         quantity,
			StockQuantity: rec.StockQuantity,
			Message:       message,
		})
	})
	if err != nil {
		return err
	}
	s.bumpCache(ctx)
	s.recordAudit(ctx, 0, "inventory:book", productID, map[string]any{
		"warehouse_id": warehouseID,
		"qty":          quantity,
	})
	return nil
}

// ReverseBookedInventory returns a shipped item's quantity to both stock and
// reserved counters of its warehouse. Reversal of a shipment that was never
// shipped returns 0 without touching state. The quantity actually reversed
// is returned.
func (s *Service) ReverseBookedInventory(ctx context.Context, productID, shipmentItemID int64, message string) (int, error) {
	if productID == 0 {
		return 0, ErrProductRequired
	}
	item, err := s.shipments.Item(ctx, shipmentItemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	shipment, err := s.shipments.Shipment(ctx, item.ShipmentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if shipment.ShippedAt == nil {
		return 0, nil
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product.InventoryMethod != products.InventoryMethodSimple || !product.MultiWarehouse {
		return 0, nil
	}

	reversed := 0
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rec, err := tx.RecordForUpdate(ctx, productID, item.WarehouseID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil
			}
			return err
		}
		rec.StockQuantity += item.Quantity
		rec.ReservedQuantity += item.Quantity
		if err := tx.SaveRecords(ctx, []WarehouseRecord{rec}); err != nil {
			return err
		}
		reversed = item.Quantity
		return tx.InsertHistory(ctx, HistoryEntry{
			ProductID:     productID,
			WarehouseID:   item.WarehouseID,
			Delta:         item.Quantity,
			StockQuantity: rec.StockQuantity,
			Message:       message,
		})
	})
	if err != nil {
		return 0, err
	}
	if reversed != 0 {
		s.bumpCache(ctx)
		s.recordAudit(ctx, 0, "inventory:reverse-booking", productID, map[string]any{
			"shipment_item_id": shipmentItemID,
			"qty":              reversed,
		})
	}
	return reversed, nil
}

// SetWarehouseStock sets the physical stock counter of one warehouse record,
// creating the record when multi-warehouse tracking was just enabled.
func (s *Service) SetWarehouseStock(ctx context.Context, productID, warehouseID int64, stock int, message string) error {
	if productID == 0 {
		return ErrProductRequired
	}
	if warehouseID == 0 {
		return fmt.Errorf("%w: warehouse required", ErrInvalidQuantity)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rec, err := tx.RecordForUpdate(ctx, productID, warehouseID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, ErrRecordNotFound) {
			rec = WarehouseRecord{ProductID: productID, WarehouseID: warehouseID}
		}
		delta := stock - rec.StockQuantity
		if delta == 0 {
			return nil
		}
		rec.StockQuantity = stock
		if err := tx.SaveRecords(ctx, []WarehouseRecord{rec}); err != nil {
			return err
		}
		return tx.InsertHistory(ctx, HistoryEntry{
			ProductID:     productID,
			WarehouseID:   warehouseID,
			Delta:         delta,
			StockQuantity: rec.StockQuantity,
			Message:       message,
		})
	})
	if err != nil {
		return err
	}
	s.bumpCache(ctx)
	s.recordAudit(ctx, 0, "inventory:set-warehouse-stock", productID, map[string]any{
		"warehouse_id": warehouseID,
		"stock":        stock,
	})
	return nil
}

// TotalStockQuantity aggregates availability for a product. For
// multi-warehouse products it sums stock across warehouses, subtracting
// reserved when useReserved is set, optionally restricted to one warehouse.
// Other tracking modes report the simple counter.
func (s *Service) TotalStockQuantity(ctx context.Context, product products.Product, useReserved bool, warehouseID int64) (int, error) {
	if product.InventoryMethod != products.InventoryMethodSimple || !product.MultiWarehouse {
		return product.StockQuantity, nil
	}
	records, err := s.repo.Records(ctx, product.ID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, rec := range records {
		if warehouseID != 0 && rec.WarehouseID != warehouseID {
			continue
		}
		total += rec.StockQuantity
		if useReserved {
			total -= rec.ReservedQuantity
		}
	}
	return total, nil
}

// Availability reports the cached available-to-promise total for a product,
// optionally restricted to one warehouse.
func (s *Service) Availability(ctx context.Context, productID, warehouseID int64) (int, error) {
	if productID == 0 {
		return 0, ErrProductRequired
	}
	key, err := s.cache.AvailabilityKey(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	var total int
	err = s.cache.FetchJSON(ctx, key, &total, func(ctx context.Context) (interface{}, error) {
		product, err := s.catalog.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		return s.TotalStockQuantity(ctx, product, true, warehouseID)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ScanLowStock re-applies the low-stock policy across tracked products
// against current totals. Adjustments normally keep the flags current; the
// sweep catches drift from direct warehouse stock edits. It reports how many
// products changed state.
func (s *Service) ScanLowStock(ctx context.Context) (int, error) {
	items, err := s.catalog.ListTracked(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, product := range items {
		total, err := s.TotalStockQuantity(ctx, product, true, 0)
		if err != nil {
			return changed, err
		}
		current := StockState{Published: product.Published, BuyButtonDisabled: product.BuyButtonDisabled}
		state := ApplyLowStockPolicy(PolicyInput{
			Total:            total,
			MinStockQuantity: product.MinStockQuantity,
			Action:           product.LowStockAction,
			AllowRepublish:   s.settings.AllowRepublish,
			Current:          current,
		})
		if state == current {
			continue
		}
		product.Published = state.Published
		product.BuyButtonDisabled = state.BuyButtonDisabled
		if err := s.catalog.UpdateInventory(ctx, product); err != nil {
			return changed, err
		}
		changed++
	}
	if changed > 0 {
		s.bumpCache(ctx)
	}
	return changed, nil
}

// History lists stock ledger entries, newest first.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, shared.Pagination, error) {
	if filter.PerPage <= 0 {
		filter.PerPage = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	entries, total, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

func (s *Service) notifyQuantityBelow(ctx context.Context, productID, combinationID int64, total int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.QuantityBelow(ctx, productID, combinationID, total); err != nil {
		s.logger.Warn("quantity below notification failed",
			slog.Int64("product_id", productID),
			slog.Any("error", err))
	}
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("availability cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, productID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
		EntityID: fmt.Sprintf("%d", productID),
		Meta:     meta,
	})
}
