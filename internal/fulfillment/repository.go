package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-commerce/meridian/internal/shared"
)

// Repository persists shipments.
type Repository interface {
	Create(ctx context.Context, shipment Shipment) (Shipment, error)
	Get(ctx context.Context, id int64) (Shipment, error)
	Item(ctx context.Context, id int64) (ShipmentItem, error)
	MarkShipped(ctx context.Context, id int64, at time.Time) error
	MarkDelivered(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, shipment Shipment) (Shipment, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO shipments (tracking_number, created_at) VALUES ($1,$2) RETURNING id`,
		shipment.TrackingNumber, now).Scan(&shipment.ID)
	if err != nil {
		return Shipment{}, err
	}
	for i := range shipment.Items {
		shipment.Items[i].ShipmentID = shipment.ID
		err := r.pool.QueryRow(ctx, `INSERT INTO shipment_items (shipment_id, product_id, warehouse_id, qty) VALUES ($1,$2,$3,$4) RETURNING id`,
			shipment.ID, shipment.Items[i].ProductID, shipment.Items[i].WarehouseID, shipment.Items[i].Quantity).Scan(&shipment.Items[i].ID)
		if err != nil {
			return Shipment{}, err
		}
	}
	shipment.CreatedAt = now
	return shipment, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Shipment, error) {
	var s Shipment
	err := r.pool.QueryRow(ctx, `SELECT id, tracking_number, shipped_at, delivered_at, created_at FROM shipments WHERE id=$1`, id).
		Scan(&s.ID, &s.TrackingNumber, &s.ShippedAt, &s.DeliveredAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shipment{}, shared.ErrNotFound
		}
		return Shipment{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, shipment_id, product_id, warehouse_id, qty FROM shipment_items WHERE shipment_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return Shipment{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item ShipmentItem
		if err := rows.Scan(&item.ID, &item.ShipmentID, &item.ProductID, &item.WarehouseID, &item.Quantity); err != nil {
			return Shipment{}, err
		}
		s.Items = append(s.Items, item)
	}
	return s, rows.Err()
}

func (r *repository) Item(ctx context.Context, id int64) (ShipmentItem, error) {
	var item ShipmentItem
	err := r.pool.QueryRow(ctx, `SELECT id, shipment_id, product_id, warehouse_id, qty FROM shipment_items WHERE id=$1`, id).
		Scan(&item.ID, &item.ShipmentID, &item.ProductID, &item.WarehouseID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ShipmentItem{}, shared.ErrNotFound
		}
		return ShipmentItem{}, err
	}
	return item, nil
}

func (r *repository) MarkShipped(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE shipments SET shipped_at=$1 WHERE id=$2`, at, id)
	return err
}

func (r *repository) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE shipments SET delivered_at=$1 WHERE id=$2`, at, id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM shipment_items WHERE shipment_id=$1`, id); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM shipments WHERE id=$1`, id)
	return err
}
