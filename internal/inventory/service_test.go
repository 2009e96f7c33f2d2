package inventory

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-commerce/meridian/internal/catalog/combinations"
	"github.com/meridian-commerce/meridian/internal/catalog/products"
	"github.com/meridian-commerce/meridian/internal/shared"
)

type memoryRepo struct {
	records map[string]WarehouseRecord
	history []HistoryEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]WarehouseRecord)}
}

func recKey(productID, warehouseID int64) string {
	return fmt.Sprintf("%d:%d", productID, warehouseID)
}

func (r *memoryRepo) put(rec WarehouseRecord) {
	r.records[recKey(rec.ProductID, rec.WarehouseID)] = rec
}

func (r *memoryRepo) get(productID, warehouseID int64) WarehouseRecord {
	return r.records[recKey(productID, warehouseID)]
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Records(ctx context.Context, productID int64) ([]WarehouseRecord, error) {
	var out []WarehouseRecord
	for _, rec := range r.records {
		if rec.ProductID == productID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (r *memoryRepo) AddHistory(ctx context.Context, entry HistoryEntry) error {
	entry.ID = int64(len(r.history) + 1)
	r.history = append(r.history, entry)
	return nil
}

func (r *memoryRepo) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int, error) {
	var out []HistoryEntry
	for i := len(r.history) - 1; i >= 0; i-- {
		entry := r.history[i]
		if filter.ProductID != 0 && entry.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != 0 && entry.WarehouseID != filter.WarehouseID {
			continue
		}
		out = append(out, entry)
	}
	return out, len(out), nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) RecordsForUpdate(ctx context.Context, productID int64) ([]WarehouseRecord, error) {
	return tx.repo.Records(ctx, productID)
}

func (tx *memoryTx) RecordForUpdate(ctx context.Context, productID, warehouseID int64) (WarehouseRecord, error) {
	rec, ok := tx.repo.records[recKey(productID, warehouseID)]
	if !ok {
		return WarehouseRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (tx *memoryTx) SaveRecords(ctx context.Context, records []WarehouseRecord) error {
	for _, rec := range records {
		tx.repo.put(rec)
	}
	return nil
}

func (tx *memoryTx) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	return tx.repo.AddHistory(ctx, entry)
}

type fakeCatalog struct {
	products map[int64]products.Product
}

func newFakeCatalog(items ...products.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[int64]products.Product)}
	for _, p := range items {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) Get(ctx context.Context, id int64) (products.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (c *fakeCatalog) ListTracked(ctx context.Context) ([]products.Product, error) {
	var out []products.Product
	for _, p := range c.products {
		if p.InventoryMethod == products.InventoryMethodSimple && p.LowStockAction != products.LowStockActionNothing {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *fakeCatalog) UpdateInventory(ctx context.Context, p products.Product) error {
	stored := c.products[p.ID]
	stored.StockQuantity = p.StockQuantity
	stored.Published = p.Published
	stored.BuyButtonDisabled = p.BuyButtonDisabled
	c.products[p.ID] = stored
	return nil
}

type fakeCombos struct {
	combos map[int64]combinations.Combination
}

func (c *fakeCombos) Get(ctx context.Context, id int64) (combinations.Combination, error) {
	combo, ok := c.combos[id]
	if !ok {
		return combinations.Combination{}, shared.ErrNotFound
	}
	return combo, nil
}

func (c *fakeCombos) UpdateStock(ctx context.Context, id int64, stock int) error {
	combo := c.combos[id]
	combo.StockQuantity = stock
	c.combos[id] = combo
	return nil
}

type fakeShipments struct {
	shipments map[int64]ShipmentInfo
	items     map[int64]ShipmentItem
}

func (s *fakeShipments) Shipment(ctx context.Context, id int64) (ShipmentInfo, error) {
	info, ok := s.shipments[id]
	if !ok {
		return ShipmentInfo{}, shared.ErrNotFound
	}
	return info, nil
}

func (s *fakeShipments) Item(ctx context.Context, id int64) (ShipmentItem, error) {
	item, ok := s.items[id]
	if !ok {
		return ShipmentItem{}, shared.ErrNotFound
	}
	return item, nil
}

type fakeNotifier struct {
	calls []int
}

func (n *fakeNotifier) QuantityBelow(ctx context.Context, productID, combinationID int64, total int) error {
	n.calls = append(n.calls, total)
	return nil
}

func multiWarehouseProduct(id int64) products.Product {
	return products.Product{
		ID:              id,
		Code:            fmt.Sprintf("P-%d", id),
		InventoryMethod: products.InventoryMethodSimple,
		MultiWarehouse:  true,
		Published:       true,
	}
}

func newTestService(repo *memoryRepo, catalog *fakeCatalog, deps ...func(*ServiceDeps)) *Service {
	d := ServiceDeps{
		Repo:     repo,
		Catalog:  catalog,
		Settings: Settings{AllowRepublish: true, MaxBundleDepth: 10},
	}
	for _, fn := range deps {
		fn(&d)
	}
	return NewService(d)
}

func TestReserveSpreadsAcrossWarehouses(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10, ReservedQuantity: 2})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.ReserveInventory(context.Background(), 1, -12))

	// Warehouse 2 had more available (8 vs 5) so it fills first.
	require.Equal(t, 10, repo.get(1, 2).ReservedQuantity)
	require.Equal(t, 4, repo.get(1, 1).ReservedQuantity)
	require.Equal(t, 5, repo.get(1, 1).StockQuantity)
	require.Equal(t, 10, repo.get(1, 2).StockQuantity)
}

func TestReserveOvercommitsFirstWarehouse(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10, ReservedQuantity: 2})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.ReserveInventory(context.Background(), 1, -20))

	// 13 available in total; the remaining 7 lands on the warehouse with the
	// most available-to-promise, pushing reserved past stock.
	require.Equal(t, 17, repo.get(1, 2).ReservedQuantity)
	require.Equal(t, 5, repo.get(1, 1).ReservedQuantity)
}

func TestReserveRequiresNegativeQuantity(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newFakeCatalog())
	require.ErrorIs(t, svc.ReserveInventory(context.Background(), 1, 3), ErrInvalidQuantity)
	require.ErrorIs(t, svc.ReserveInventory(context.Background(), 1, 0), ErrInvalidQuantity)
}

func TestReserveWithoutRecordsIsNoop(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))
	require.NoError(t, svc.ReserveInventory(context.Background(), 1, -5))
	require.Empty(t, repo.records)
}

func TestUnblockDrainsMostReservedFirst(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5, ReservedQuantity: 4})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10, ReservedQuantity: 10})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.UnblockReservedInventory(context.Background(), 1, 12))

	require.Equal(t, 0, repo.get(1, 2).ReservedQuantity)
	require.Equal(t, 2, repo.get(1, 1).ReservedQuantity)
}

func TestUnblockSurplusBecomesStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5, ReservedQuantity: 2})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.UnblockReservedInventory(context.Background(), 1, 5))

	// 2 reserved drained, surplus 3 lands as stock on the most reserved record.
	require.Equal(t, 0, repo.get(1, 1).ReservedQuantity)
	require.Equal(t, 8, repo.get(1, 1).StockQuantity)
	require.Equal(t, 10, repo.get(1, 2).StockQuantity)
}

func TestReserveThenUnblockRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))
	ctx := context.Background()

	require.NoError(t, svc.ReserveInventory(ctx, 1, -9))
	require.NoError(t, svc.UnblockReservedInventory(ctx, 1, 9))

	require.Equal(t, 0, repo.get(1, 1).ReservedQuantity)
	require.Equal(t, 0, repo.get(1, 2).ReservedQuantity)
	require.Equal(t, 5, repo.get(1, 1).StockQuantity)
	require.Equal(t, 10, repo.get(1, 2).StockQuantity)
}

func TestBookReservedInventory(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 10, ReservedQuantity: 5})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.BookReservedInventory(context.Background(), 1, 1, -3, "shipped"))

	rec := repo.get(1, 1)
	require.Equal(t, 2, rec.ReservedQuantity)
	require.Equal(t, 7, rec.StockQuantity)
	require.Len(t, repo.history, 1)
	require.Equal(t, -3, repo.history[0].Delta)
	require.Equal(t, 7, repo.history[0].StockQuantity)
}

func TestBookClampsReservedAtZero(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 10, ReservedQuantity: 1})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.BookReservedInventory(context.Background(), 1, 1, -4, ""))

	rec := repo.get(1, 1)
	require.Equal(t, 0, rec.ReservedQuantity)
	require.Equal(t, 6, rec.StockQuantity)
}

func TestBookIgnoresOtherTrackingModes(t *testing.T) {
	repo := newMemoryRepo()
	single := multiWarehouseProduct(1)
	single.MultiWarehouse = false
	svc := newTestService(repo, newFakeCatalog(single))

	require.NoError(t, svc.BookReservedInventory(context.Background(), 1, 1, -3, ""))
	require.Empty(t, repo.history)
}

func TestBookMissingRecordIsNoop(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.BookReservedInventory(context.Background(), 1, 9, -3, ""))
	require.Empty(t, repo.history)
}

func TestBookRequiresNegativeQuantity(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newFakeCatalog(multiWarehouseProduct(1)))
	require.ErrorIs(t, svc.BookReservedInventory(context.Background(), 1, 1, 3, ""), ErrInvalidQuantity)
}

func TestReverseBookedInventory(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 7, ReservedQuantity: 2})
	shippedAt := time.Now()
	shipments := &fakeShipments{
		shipments: map[int64]ShipmentInfo{3: {ID: 3, ShippedAt: &shippedAt}},
		items:     map[int64]ShipmentItem{7: {ID: 7, ShipmentID: 3, ProductID: 1, WarehouseID: 1, Quantity: 4}},
	}
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)), func(d *ServiceDeps) {
		d.Shipments = shipments
	})

	reversed, err := svc.ReverseBookedInventory(context.Background(), 1, 7, "cancelled")
	require.NoError(t, err)
	require.Equal(t, 4, reversed)

	rec := repo.get(1, 1)
	require.Equal(t, 11, rec.StockQuantity)
	require.Equal(t, 6, rec.ReservedQuantity)
	require.Len(t, repo.history, 1)
}

func TestReverseRequiresShippedShipment(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 7, ReservedQuantity: 2})
	shipments := &fakeShipments{
		shipments: map[int64]ShipmentInfo{3: {ID: 3}},
		items:     map[int64]ShipmentItem{7: {ID: 7, ShipmentID: 3, ProductID: 1, WarehouseID: 1, Quantity: 4}},
	}
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)), func(d *ServiceDeps) {
		d.Shipments = shipments
	})

	reversed, err := svc.ReverseBookedInventory(context.Background(), 1, 7, "")
	require.NoError(t, err)
	require.Zero(t, reversed)
	require.Equal(t, 7, repo.get(1, 1).StockQuantity)
	require.Empty(t, repo.history)
}

func TestReverseMissingItemIsNoop(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newFakeCatalog(multiWarehouseProduct(1)), func(d *ServiceDeps) {
		d.Shipments = &fakeShipments{shipments: map[int64]ShipmentInfo{}, items: map[int64]ShipmentItem{}}
	})
	reversed, err := svc.ReverseBookedInventory(context.Background(), 1, 99, "")
	require.NoError(t, err)
	require.Zero(t, reversed)
}

func TestSetWarehouseStockCreatesRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.SetWarehouseStock(context.Background(), 1, 2, 25, "initial count"))

	rec := repo.get(1, 2)
	require.Equal(t, 25, rec.StockQuantity)
	require.Len(t, repo.history, 1)
	require.Equal(t, 25, repo.history[0].Delta)
}

func TestSetWarehouseStockUnchangedSkipsLedger(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 25})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.SetWarehouseStock(context.Background(), 1, 2, 25, ""))
	require.Empty(t, repo.history)
}

func TestAdjustSimpleSingleWarehouse(t *testing.T) {
	catalog := newFakeCatalog(products.Product{
		ID:                  1,
		InventoryMethod:     products.InventoryMethodSimple,
		StockQuantity:       15,
		MinStockQuantity:    10,
		NotifyQuantityBelow: 8,
		LowStockAction:      products.LowStockActionDisableBuyButton,
		Published:           true,
	})
	repo := newMemoryRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, catalog, func(d *ServiceDeps) { d.Notifier = notifier })
	ctx := context.Background()

	require.NoError(t, svc.AdjustInventory(ctx, AdjustmentInput{ProductID: 1, Delta: -10, Message: "order"}))

	p := catalog.products[1]
	require.Equal(t, 5, p.StockQuantity)
	require.True(t, p.BuyButtonDisabled)
	require.True(t, p.Published)
	require.Equal(t, []int{5}, notifier.calls)
	require.Len(t, repo.history, 1)
	require.Equal(t, -10, repo.history[0].Delta)
	require.Equal(t, 5, repo.history[0].StockQuantity)

	// Restock above the minimum re-enables the buy button.
	require.NoError(t, svc.AdjustInventory(ctx, AdjustmentInput{ProductID: 1, Delta: 7, Message: "restock"}))
	p = catalog.products[1]
	require.Equal(t, 12, p.StockQuantity)
	require.False(t, p.BuyButtonDisabled)
	require.Len(t, notifier.calls, 1)
}

func TestAdjustUnpublishAndRecover(t *testing.T) {
	catalog := newFakeCatalog(products.Product{
		ID:               1,
		InventoryMethod:  products.InventoryMethodSimple,
		StockQuantity:    15,
		MinStockQuantity: 10,
		LowStockAction:   products.LowStockActionUnpublish,
		Published:        true,
	})
	svc := newTestService(newMemoryRepo(), catalog)
	ctx := context.Background()

	require.NoError(t, svc.AdjustInventory(ctx, AdjustmentInput{ProductID: 1, Delta: -10}))
	require.False(t, catalog.products[1].Published)

	require.NoError(t, svc.AdjustInventory(ctx, AdjustmentInput{ProductID: 1, Delta: 7}))
	require.True(t, catalog.products[1].Published)
}

func TestAdjustRecoveryGatedByAllowRepublish(t *testing.T) {
	catalog := newFakeCatalog(products.Product{
		ID:               1,
		InventoryMethod:  products.InventoryMethodSimple,
		StockQuantity:    5,
		MinStockQuantity: 10,
		LowStockAction:   products.LowStockActionUnpublish,
		Published:        false,
	})
	svc := newTestService(newMemoryRepo(), catalog, func(d *ServiceDeps) {
		d.Settings = Settings{AllowRepublish: false, MaxBundleDepth: 10}
	})

	require.NoError(t, svc.AdjustInventory(context.Background(), AdjustmentInput{ProductID: 1, Delta: 20}))
	require.False(t, catalog.products[1].Published)
}

func TestAdjustZeroDeltaIsNoop(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, newFakeCatalog())
	require.NoError(t, svc.AdjustInventory(context.Background(), AdjustmentInput{ProductID: 1}))
	require.Empty(t, repo.history)
}

func TestAdjustRejectsMalformedRefID(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newFakeCatalog())
	err := svc.AdjustInventory(context.Background(), AdjustmentInput{ProductID: 1, Delta: -1, RefID: "not-a-uuid"})
	require.Error(t, err)
}

func TestAdjustUntrackedProductSkipsStock(t *testing.T) {
	catalog := newFakeCatalog(products.Product{ID: 1, InventoryMethod: products.InventoryMethodNone, StockQuantity: 5})
	repo := newMemoryRepo()
	svc := newTestService(repo, catalog)

	require.NoError(t, svc.AdjustInventory(context.Background(), AdjustmentInput{ProductID: 1, Delta: -3}))
	require.Equal(t, 5, catalog.products[1].StockQuantity)
	require.Empty(t, repo.history)
}

func TestAdjustMultiWarehouseDelegatesToReservation(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10, ReservedQuantity: 2})
	svc := newTestService(repo, newFakeCatalog(multiWarehouseProduct(1)))

	require.NoError(t, svc.AdjustInventory(context.Background(), AdjustmentInput{ProductID: 1, Delta: -12}))

	require.Equal(t, 4, repo.get(1, 1).ReservedQuantity)
	require.Equal(t, 10, repo.get(1, 2).ReservedQuantity)
	require.Len(t, repo.history, 1)
	// Resulting total is stock minus reserved across both warehouses.
	require.Equal(t, 1, repo.history[0].StockQuantity)
}

func TestAdjustBundleComponents(t *testing.T) {
	catalog := newFakeCatalog(
		products.Product{ID: 1, InventoryMethod: products.InventoryMethodSimple, StockQuantity: 10, Published: true},
		products.Product{ID: 2, InventoryMethod: products.InventoryMethodSimple, StockQuantity: 20, Published: true},
	)
	repo := newMemoryRepo()
	svc := newTestService(repo, catalog)

	in := AdjustmentInput{
		ProductID: 1,
		Delta:     -3,
		Selection: Selection{Components: []ComponentRef{{ProductID: 2, Quantity: 2}}},
	}
	require.NoError(t, svc.AdjustInventory(context.Background(), in))

	require.Equal(t, 7, catalog.products[1].StockQuantity)
	require.Equal(t, 14, catalog.products[2].StockQuantity)
	require.Len(t, repo.history, 2)
}

func TestAdjustBundleCycleAdjustsOnce(t *testing.T) {
	catalog := newFakeCatalog(
		products.Product{ID: 1, InventoryMethod: products.InventoryMethodSimple, StockQuantity: 10, Published: true},
	)
	svc := newTestService(newMemoryRepo(), catalog)

	in := AdjustmentInput{
		ProductID: 1,
		Delta:     -3,
		Selection: Selection{Components: []ComponentRef{{ProductID: 1, Quantity: 1}}},
	}
	require.NoError(t, svc.AdjustInventory(context.Background(), in))
	require.Equal(t, 7, catalog.products[1].StockQuantity)
}

func TestAdjustBundleDepthGuard(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newFakeCatalog())
	err := svc.adjust(context.Background(), AdjustmentInput{ProductID: 1, Delta: -1}, 11, map[int64]bool{})
	require.ErrorIs(t, err, ErrBundleDepthExceeded)
}

func TestAdjustCombination(t *testing.T) {
	catalog := newFakeCatalog(
		products.Product{ID: 3, InventoryMethod: products.InventoryMethodByCombination, Published: true},
		products.Product{ID: 2, InventoryMethod: products.InventoryMethodSimple, StockQuantity: 20, Published: true},
	)
	combos := &fakeCombos{combos: map[int64]combinations.Combination{
		9: {
			ID:                  9,
			ProductID:           3,
			SKU:                 "SKU-9",
			StockQuantity:       5,
			NotifyQuantityBelow: 4,
			Components:          []combinations.Component{{CombinationID: 9, ProductID: 2, Quantity: 1}},
		},
	}}
	repo := newMemoryRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, catalog, func(d *ServiceDeps) {
		d.Combos = combos
		d.Notifier = notifier
	})

	in := AdjustmentInput{ProductID: 3, Delta: -2, Selection: Selection{CombinationID: 9}}
	require.NoError(t, svc.AdjustInventory(context.Background(), in))

	require.Equal(t, 3, combos.combos[9].StockQuantity)
	require.Equal(t, []int{3}, notifier.calls)
	// The combination's bundle components cascade.
	require.Equal(t, 18, catalog.products[2].StockQuantity)
}

func TestAdjustCombinationMismatchIsNoop(t *testing.T) {
	catalog := newFakeCatalog(
		products.Product{ID: 3, InventoryMethod: products.InventoryMethodByCombination, Published: true},
	)
	combos := &fakeCombos{combos: map[int64]combinations.Combination{
		9: {ID: 9, ProductID: 4, StockQuantity: 5},
	}}
	repo := newMemoryRepo()
	svc := newTestService(repo, catalog, func(d *ServiceDeps) { d.Combos = combos })

	in := AdjustmentInput{ProductID: 3, Delta: -2, Selection: Selection{CombinationID: 9}}
	require.NoError(t, svc.AdjustInventory(context.Background(), in))
	require.Equal(t, 5, combos.combos[9].StockQuantity)
	require.Empty(t, repo.history)
}

func TestTotalStockQuantity(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 1, StockQuantity: 5, ReservedQuantity: 1})
	repo.put(WarehouseRecord{ProductID: 1, WarehouseID: 2, StockQuantity: 10, ReservedQuantity: 2})
	svc := newTestService(repo, newFakeCatalog())
	ctx := context.Background()
	product := multiWarehouseProduct(1)

	total, err := svc.TotalStockQuantity(ctx, product, true, 0)
	require.NoError(t, err)
	require.Equal(t, 12, total)

	total, err = svc.TotalStockQuantity(ctx, product, false, 0)
	require.NoError(t, err)
	require.Equal(t, 15, total)

	total, err = svc.TotalStockQuantity(ctx, product, true, 2)
	require.NoError(t, err)
	require.Equal(t, 8, total)

	single := product
	single.MultiWarehouse = false
	single.StockQuantity = 42
	total, err = svc.TotalStockQuantity(ctx, single, true, 0)
	require.NoError(t, err)
	require.Equal(t, 42, total)
}

func TestHistoryNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, newFakeCatalog())
	ctx := context.Background()
	require.NoError(t, repo.AddHistory(ctx, HistoryEntry{ProductID: 1, Delta: 5}))
	require.NoError(t, repo.AddHistory(ctx, HistoryEntry{ProductID: 1, Delta: -3}))

	entries, pagination, err := svc.History(ctx, HistoryFilter{ProductID: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, -3, entries[0].Delta)
	require.Equal(t, 5, entries[1].Delta)
	require.Equal(t, 2, pagination.Total)
}

func TestScanLowStock(t *testing.T) {
	catalog := newFakeCatalog(
		products.Product{
			ID:               1,
			InventoryMethod:  products.InventoryMethodSimple,
			StockQuantity:    4,
			MinStockQuantity: 10,
			LowStockAction:   products.LowStockActionDisableBuyButton,
			Published:        true,
		},
		products.Product{
			ID:               2,
			InventoryMethod:  products.InventoryMethodSimple,
			StockQuantity:    50,
			MinStockQuantity: 10,
			LowStockAction:   products.LowStockActionDisableBuyButton,
			Published:        true,
		},
	)
	svc := newTestService(newMemoryRepo(), catalog)

	changed, err := svc.ScanLowStock(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, changed)
	require.True(t, catalog.products[1].BuyButtonDisabled)
	require.False(t, catalog.products[2].BuyButtonDisabled)
}
