package inventory

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-commerce/meridian/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Records lists the warehouse inventory rows of a product.
func (r *Repository) Records(ctx context.Context, productID int64) ([]WarehouseRecord, error) {
	if r == nil {
		return nil, errors.New("inventory repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT product_id, warehouse_id, stock_qty, reserved_qty, updated_at
FROM product_warehouse_inventory
WHERE product_id=$1
ORDER BY warehouse_id ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// AddHistory appends a ledger entry outside a warehouse transaction.
func (r *Repository) AddHistory(ctx context.Context, entry HistoryEntry) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	_, err := r.pool.Exec(ctx, insertHistorySQL,
		entry.ProductID, nullInt(entry.WarehouseID), nullInt(entry.CombinationID),
		entry.Delta, entry.StockQuantity, entry.Message, nullUUID(entry.RefID))
	return err
}

// History lists ledger entries newest first with the total match count.
func (r *Repository) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int, error) {
	if r == nil {
		return nil, 0, errors.New("inventory repository not initialised")
	}
	where := ` WHERE 1=1`
	args := []any{}
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		where += ` AND product_id = $` + strconv.Itoa(len(args))
	}
	if filter.WarehouseID != 0 {
		args = append(args, filter.WarehouseID)
		where += ` AND warehouse_id = $` + strconv.Itoa(len(args))
	}
	if filter.CombinationID != 0 {
		args = append(args, filter.CombinationID)
		where += ` AND combination_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stock_quantity_history`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	offset := (filter.Page - 1) * perPage
	if offset < 0 {
		offset = 0
	}
	args = append(args, perPage)
	limitClause := ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	limitClause += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, `SELECT id, product_id, COALESCE(warehouse_id, 0), COALESCE(combination_id, 0), delta, stock_qty, message, COALESCE(ref_id::text, ''), created_at
FROM stock_quantity_history`+where+` ORDER BY created_at DESC, id DESC`+limitClause, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.WarehouseID, &e.CombinationID, &e.Delta, &e.StockQuantity, &e.Message, &e.RefID, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

const insertHistorySQL = `INSERT INTO stock_quantity_history (product_id, warehouse_id, combination_id, delta, stock_qty, message, ref_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`

func (r *txRepository) RecordsForUpdate(ctx context.Context, productID int64) ([]WarehouseRecord, error) {
	rows, err := r.tx.Query(ctx, `SELECT product_id, warehouse_id, stock_qty, reserved_qty, updated_at
FROM product_warehouse_inventory
WHERE product_id=$1
ORDER BY warehouse_id ASC
FOR UPDATE`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *txRepository) RecordForUpdate(ctx context.Context, productID, warehouseID int64) (WarehouseRecord, error) {
	var rec WarehouseRecord
	err := r.tx.QueryRow(ctx, `SELECT product_id, warehouse_id, stock_qty, reserved_qty, updated_at
FROM product_warehouse_inventory
WHERE product_id=$1 AND warehouse_id=$2
FOR UPDATE`, productID, warehouseID).
		Scan(&rec.ProductID, &rec.WarehouseID, &rec.StockQuantity, &rec.ReservedQuantity, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WarehouseRecord{ProductID: productID, WarehouseID: warehouseID}, ErrRecordNotFound
		}
		return WarehouseRecord{}, err
	}
	return rec, nil
}

func (r *txRepository) SaveRecords(ctx context.Context, records []WarehouseRecord) error {
	for _, rec := range records {
		if _, err := r.tx.Exec(ctx, `INSERT INTO product_warehouse_inventory (product_id, warehouse_id, stock_qty, reserved_qty, updated_at)
VALUES ($1,$2,$3,$4,NOW())
ON CONFLICT (product_id, warehouse_id) DO UPDATE SET stock_qty=EXCLUDED.stock_qty, reserved_qty=EXCLUDED.reserved_qty, updated_at=NOW()`,
			rec.ProductID, rec.WarehouseID, rec.StockQuantity, rec.ReservedQuantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := r.tx.Exec(ctx, insertHistorySQL,
		entry.ProductID, nullInt(entry.WarehouseID), nullInt(entry.CombinationID),
		entry.Delta, entry.StockQuantity, entry.Message, nullUUID(entry.RefID))
	return err
}

func scanRecords(rows pgx.Rows) ([]WarehouseRecord, error) {
	records := []WarehouseRecord{}
	for rows.Next() {
		var rec WarehouseRecord
		if err := rows.Scan(&rec.ProductID, &rec.WarehouseID, &rec.StockQuantity, &rec.ReservedQuantity, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullUUID(value string) any {
	if value == "" {
		return nil
	}
	return value
}
