package combinations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-commerce/meridian/internal/shared"
)

// Repository persists attribute combinations and their bundle components.
type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]Combination, error)
	Get(ctx context.Context, id int64) (Combination, error)
	Create(ctx context.Context, combo Combination) (Combination, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]Combination, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, sku, stock_qty, notify_qty_below, created_at, updated_at
FROM product_attribute_combinations WHERE product_id=$1 ORDER BY id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var combos []Combination
	for rows.Next() {
		var c Combination
		if err := rows.Scan(&c.ID, &c.ProductID, &c.SKU, &c.StockQuantity, &c.NotifyQuantityBelow, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		combos = append(combos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range combos {
		components, err := r.components(ctx, combos[i].ID)
		if err != nil {
			return nil, err
		}
		combos[i].Components = components
	}
	return combos, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Combination, error) {
	var c Combination
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, sku, stock_qty, notify_qty_below, created_at, updated_at
FROM product_attribute_combinations WHERE id=$1`, id).
		Scan(&c.ID, &c.ProductID, &c.SKU, &c.StockQuantity, &c.NotifyQuantityBelow, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Combination{}, shared.ErrNotFound
		}
		return Combination{}, err
	}
	components, err := r.components(ctx, c.ID)
	if err != nil {
		return Combination{}, err
	}
	c.Components = components
	return c, nil
}

func (r *repository) Create(ctx context.Context, combo Combination) (Combination, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO product_attribute_combinations (product_id, sku, stock_qty, notify_qty_below, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$5) RETURNING id`,
		combo.ProductID, combo.SKU, combo.StockQuantity, combo.NotifyQuantityBelow, now).Scan(&combo.ID)
	if err != nil {
		return Combination{}, err
	}
	for i := range combo.Components {
		combo.Components[i].CombinationID = combo.ID
		err := r.pool.QueryRow(ctx, `INSERT INTO combination_components (combination_id, product_id, qty) VALUES ($1,$2,$3) RETURNING id`,
			combo.ID, combo.Components[i].ProductID, combo.Components[i].Quantity).Scan(&combo.Components[i].ID)
		if err != nil {
			return Combination{}, err
		}
	}
	combo.CreatedAt = now
	combo.UpdatedAt = now
	return combo, nil
}

func (r *repository) UpdateStock(ctx context.Context, id int64, stock int) error {
	_, err := r.pool.Exec(ctx, `UPDATE product_attribute_combinations SET stock_qty=$1, updated_at=NOW() WHERE id=$2`, stock, id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM combination_components WHERE combination_id=$1`, id); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM product_attribute_combinations WHERE id=$1`, id)
	return err
}

func (r *repository) components(ctx context.Context, combinationID int64) ([]Component, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, combination_id, product_id, qty FROM combination_components WHERE combination_id=$1 ORDER BY id ASC`, combinationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.CombinationID, &c.ProductID, &c.Quantity); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}
