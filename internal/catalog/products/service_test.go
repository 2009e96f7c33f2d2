package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	catalogshared "github.com/meridian-commerce/meridian/internal/catalog/shared"
	"github.com/meridian-commerce/meridian/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Product
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Product)}
}

func (r *memoryRepo) List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.items {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) ListTracked(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.items {
		if p.InventoryMethod == InventoryMethodSimple && p.LowStockAction != LowStockActionNothing {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.items[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	r.nextID++
	product.ID = r.nextID
	r.items[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, product Product) error {
	product.ID = id
	r.items[id] = product
	return nil
}

func (r *memoryRepo) UpdateInventory(ctx context.Context, product Product) error {
	stored := r.items[product.ID]
	stored.StockQuantity = product.StockQuantity
	stored.Published = product.Published
	stored.BuyButtonDisabled = product.BuyButtonDisabled
	r.items[product.ID] = stored
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), Product{Code: "SKU-1", Name: "Widget"})
	require.NoError(t, err)
	require.Equal(t, InventoryMethodNone, created.InventoryMethod)
	require.Equal(t, LowStockActionNothing, created.LowStockAction)
}

func TestCreateRejectsMissingCode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Product{Name: "Widget"})
	require.Error(t, err)
}

func TestCreateRejectsUnknownMethod(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Product{Code: "SKU-1", Name: "Widget", InventoryMethod: "BOGUS"})
	require.Error(t, err)
}

func TestMultiWarehouseRequiresSimpleTracking(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Product{
		Code:            "SKU-1",
		Name:            "Widget",
		InventoryMethod: InventoryMethodByCombination,
		MultiWarehouse:  true,
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{
		Code:            "SKU-2",
		Name:            "Widget",
		InventoryMethod: InventoryMethodSimple,
		MultiWarehouse:  true,
	})
	require.NoError(t, err)
}

func TestCreateRejectsNegativeThresholds(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Product{Code: "SKU-1", Name: "Widget", MinStockQuantity: -1})
	require.Error(t, err)
}

func TestUpdateInventoryPersistsEngineFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Product{Code: "SKU-1", Name: "Widget", InventoryMethod: InventoryMethodSimple, Published: true})
	require.NoError(t, err)

	created.StockQuantity = 7
	created.BuyButtonDisabled = true
	require.NoError(t, svc.UpdateInventory(ctx, created))

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 7, stored.StockQuantity)
	require.True(t, stored.BuyButtonDisabled)
}
