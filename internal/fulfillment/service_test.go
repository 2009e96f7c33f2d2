package fulfillment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-commerce/meridian/internal/shared"
)

type memoryRepo struct {
	shipments map[int64]Shipment
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{shipments: make(map[int64]Shipment)}
}

func (r *memoryRepo) Create(ctx context.Context, shipment Shipment) (Shipment, error) {
	r.nextID++
	shipment.ID = r.nextID
	shipment.CreatedAt = time.Now()
	for i := range shipment.Items {
		r.nextID++
		shipment.Items[i].ID = r.nextID
		shipment.Items[i].ShipmentID = shipment.ID
	}
	r.shipments[shipment.ID] = shipment
	return shipment, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Shipment, error) {
	s, ok := r.shipments[id]
	if !ok {
		return Shipment{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) Item(ctx context.Context, id int64) (ShipmentItem, error) {
	for _, s := range r.shipments {
		for _, item := range s.Items {
			if item.ID == id {
				return item, nil
			}
		}
	}
	return ShipmentItem{}, shared.ErrNotFound
}

func (r *memoryRepo) MarkShipped(ctx context.Context, id int64, at time.Time) error {
	s := r.shipments[id]
	s.ShippedAt = &at
	r.shipments[id] = s
	return nil
}

func (r *memoryRepo) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	s := r.shipments[id]
	s.DeliveredAt = &at
	r.shipments[id] = s
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(r.shipments, id)
	return nil
}

type bookingCall struct {
	productID   int64
	warehouseID int64
	quantity    int
}

type fakeBooker struct {
	booked   []bookingCall
	reversed []int64
}

func (b *fakeBooker) BookReservedInventory(ctx context.Context, productID, warehouseID int64, quantity int, message string) error {
	b.booked = append(b.booked, bookingCall{productID: productID, warehouseID: warehouseID, quantity: quantity})
	return nil
}

func (b *fakeBooker) ReverseBookedInventory(ctx context.Context, productID, shipmentItemID int64, message string) (int, error) {
	b.reversed = append(b.reversed, shipmentItemID)
	return 4, nil
}

func TestCreateRequiresItems(t *testing.T) {
	svc := NewService(newMemoryRepo(), &fakeBooker{}, nil)
	_, err := svc.Create(context.Background(), Shipment{TrackingNumber: "TRK-1"})
	require.ErrorIs(t, err, ErrNoItems)
}

func TestCreateValidatesItems(t *testing.T) {
	svc := NewService(newMemoryRepo(), &fakeBooker{}, nil)
	_, err := svc.Create(context.Background(), Shipment{
		Items: []ShipmentItem{{ProductID: 1, WarehouseID: 0, Quantity: 2}},
	})
	require.ErrorIs(t, err, ErrNoItems)
}

func TestShipBooksEachItem(t *testing.T) {
	repo := newMemoryRepo()
	booker := &fakeBooker{}
	svc := NewService(repo, booker, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Shipment{Items: []ShipmentItem{
		{ProductID: 1, WarehouseID: 1, Quantity: 3},
		{ProductID: 2, WarehouseID: 2, Quantity: 5},
	}})
	require.NoError(t, err)

	shipped, err := svc.Ship(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, shipped.ShippedAt)

	require.Equal(t, []bookingCall{
		{productID: 1, warehouseID: 1, quantity: -3},
		{productID: 2, warehouseID: 2, quantity: -5},
	}, booker.booked)
}

func TestShipTwiceFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeBooker{}, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Shipment{Items: []ShipmentItem{{ProductID: 1, WarehouseID: 1, Quantity: 3}}})
	require.NoError(t, err)

	_, err = svc.Ship(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.Ship(ctx, created.ID)
	require.ErrorIs(t, err, ErrAlreadyShipped)
}

func TestDeliverRequiresShipped(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeBooker{}, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Shipment{Items: []ShipmentItem{{ProductID: 1, WarehouseID: 1, Quantity: 3}}})
	require.NoError(t, err)

	require.Error(t, svc.Deliver(ctx, created.ID))

	_, err = svc.Ship(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Deliver(ctx, created.ID))
}

func TestDeleteReversesItems(t *testing.T) {
	repo := newMemoryRepo()
	booker := &fakeBooker{}
	svc := NewService(repo, booker, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Shipment{Items: []ShipmentItem{
		{ProductID: 1, WarehouseID: 1, Quantity: 3},
		{ProductID: 2, WarehouseID: 2, Quantity: 5},
	}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Len(t, booker.reversed, 2)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInventoryAdapterMapsShipmentState(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeBooker{}, nil)
	adapter := NewInventoryAdapter(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Shipment{Items: []ShipmentItem{{ProductID: 1, WarehouseID: 1, Quantity: 3}}})
	require.NoError(t, err)

	info, err := adapter.Shipment(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, info.ShippedAt)

	_, err = svc.Ship(ctx, created.ID)
	require.NoError(t, err)

	info, err = adapter.Shipment(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, info.ShippedAt)

	item, err := adapter.Item(ctx, created.Items[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), item.ProductID)
	require.Equal(t, 3, item.Quantity)
}
