package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogshared "github.com/meridian-commerce/meridian/internal/catalog/shared"
	"github.com/meridian-commerce/meridian/internal/shared"
)

// Repository persists product master data.
type Repository interface {
	List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error)
	ListTracked(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	UpdateInventory(ctx context.Context, product Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, code, name, price, inventory_method, stock_qty, min_stock_qty, notify_qty_below, low_stock_action, multi_warehouse, published, buy_button_disabled, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR code ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset())
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// ListTracked returns products whose stock drives a low-stock action.
func (r *repository) ListTracked(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE inventory_method = $1 AND low_stock_action <> $2 ORDER BY id ASC`,
		string(InventoryMethodSimple), string(LowStockActionNothing))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO products (code, name, price, inventory_method, stock_qty, min_stock_qty, notify_qty_below, low_stock_action, multi_warehouse, published, buy_button_disabled, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12) RETURNING id`,
		product.Code, product.Name, product.Price, string(product.InventoryMethod),
		product.StockQuantity, product.MinStockQuantity, product.NotifyQuantityBelow,
		string(product.LowStockAction), product.MultiWarehouse, product.Published,
		product.BuyButtonDisabled, now).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET code=$1, name=$2, price=$3, inventory_method=$4, stock_qty=$5, min_stock_qty=$6, notify_qty_below=$7, low_stock_action=$8, multi_warehouse=$9, published=$10, buy_button_disabled=$11, updated_at=NOW()
WHERE id=$12`,
		product.Code, product.Name, product.Price, string(product.InventoryMethod),
		product.StockQuantity, product.MinStockQuantity, product.NotifyQuantityBelow,
		string(product.LowStockAction), product.MultiWarehouse, product.Published,
		product.BuyButtonDisabled, id)
	return err
}

// UpdateInventory persists only the counters and flags the allocation engine
// owns, leaving master data fields untouched.
func (r *repository) UpdateInventory(ctx context.Context, product Product) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET stock_qty=$1, published=$2, buy_button_disabled=$3, updated_at=NOW() WHERE id=$4`,
		product.StockQuantity, product.Published, product.BuyButtonDisabled, product.ID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var method, action string
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &method, &p.StockQuantity,
		&p.MinStockQuantity, &p.NotifyQuantityBelow, &action, &p.MultiWarehouse,
		&p.Published, &p.BuyButtonDisabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	p.InventoryMethod = InventoryMethod(method)
	p.LowStockAction = LowStockAction(action)
	return p, nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "name":
		return "name " + dir
	default:
		return "name " + dir
	}
}
