package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/model"
	"stockcount-api/pkg/uid"

	"github.com/jmoiron/sqlx"
)

// SQLCatalogRepository implements CatalogRepository over database/sql via sqlx.
// Queries are written with ? placeholders and rebound for the driver.
type SQLCatalogRepository struct {
	db     *sqlx.DB
	driver string
}

func (r *SQLCatalogRepository) q(query string) string {
	return r.db.Rebind(query)
}

// GetProductByBarcode finds an active product by barcode.
func (r *SQLCatalogRepository) GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	query := `
		SELECT id, barcode, name,
			COALESCE(sku, '') AS sku,
			COALESCE(category, '') AS category,
			COALESCE(selling_price, 0) AS selling_price
		FROM products
		WHERE barcode = ? AND is_active = TRUE
		LIMIT 1`

	var product model.Product
	if err := r.db.GetContext(ctx, &product, r.q(query), barcode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %s: %w", barcode, err)
	}
	return &product, nil
}

// AddProduct inserts a catalog product, generating an id when empty.
func (r *SQLCatalogRepository) AddProduct(ctx context.Context, product *model.Product) error {
	if product.ID == "" {
		product.ID = uid.New()
	}

	query := `
		INSERT INTO products (id, sku, barcode, name, category, selling_price, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, TRUE, ?)`

	_, err := r.db.ExecContext(ctx, r.q(query),
		product.ID, product.SKU, product.Barcode, product.Name, product.Category, product.SellingPrice,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add product %s: %w", product.Barcode, err)
	}
	return nil
}

// GetBranchByName finds a branch by display name.
func (r *SQLCatalogRepository) GetBranchByName(ctx context.Context, name string) (*model.Branch, error) {
	return r.getBranch(ctx, "name", name)
}

// GetBranchByCode finds a branch by short code.
func (r *SQLCatalogRepository) GetBranchByCode(ctx context.Context, code string) (*model.Branch, error) {
	return r.getBranch(ctx, "code", code)
}

func (r *SQLCatalogRepository) getBranch(ctx context.Context, column, value string) (*model.Branch, error) {
	query := `SELECT id, code, name, is_active FROM branches WHERE ` + column + ` = ? LIMIT 1`

	var branch model.Branch
	if err := r.db.GetContext(ctx, &branch, r.q(query), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get branch by %s=%s: %w", column, value, err)
	}
	return &branch, nil
}

// CreateBranch inserts a new active branch.
func (r *SQLCatalogRepository) CreateBranch(ctx context.Context, code, name string) (*model.Branch, error) {
	branch := &model.Branch{
		ID:       uid.New(),
		Code:     code,
		Name:     name,
		IsActive: true,
	}

	query := `INSERT INTO branches (id, code, name, is_active, created_at) VALUES (?, ?, ?, TRUE, ?)`
	if _, err := r.db.ExecContext(ctx, r.q(query), branch.ID, branch.Code, branch.Name, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create branch %s: %w", code, err)
	}
	return branch, nil
}

// InsertStockCount inserts one count row.
func (r *SQLCatalogRepository) InsertStockCount(ctx context.Context, count *model.StockCount) (int64, error) {
	if count.ID == "" {
		count.ID = uid.New()
	}
	if count.CountedAt.IsZero() {
		count.CountedAt = time.Now()
	}

	query := `
		INSERT INTO stock_counts (id, product_id, branch_id, barcode, product_name, counted_quantity,
			counter_name, image_url, notes, counted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, r.q(query),
		count.ID, count.ProductID, count.BranchID, count.Barcode, count.ProductName, count.CountedQuantity,
		count.CounterName, count.ImageURL, count.Notes, count.CountedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert stock count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted rows: %w", err)
	}
	return rows, nil
}

// UpsertInventory replaces the current quantity using ON CONFLICT.
func (r *SQLCatalogRepository) UpsertInventory(ctx context.Context, level model.InventoryLevel) error {
	query := `
		INSERT INTO inventory (id, product_id, branch_id, quantity, last_counted_at, last_counted_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (product_id, branch_id) DO UPDATE SET
			quantity = excluded.quantity,
			last_counted_at = excluded.last_counted_at,
			last_counted_by = excluded.last_counted_by,
			updated_at = excluded.updated_at`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, r.q(query),
		uid.New(), level.ProductID, level.BranchID, level.Quantity, level.LastCountedAt.UTC(), level.LastCountedBy, now)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return nil
}

// GetInventory returns the current level for (product, branch), or nil.
func (r *SQLCatalogRepository) GetInventory(ctx context.Context, productID, branchID string) (*model.InventoryLevel, error) {
	query := `
		SELECT product_id, branch_id, quantity, last_counted_at, COALESCE(last_counted_by, '') AS last_counted_by
		FROM inventory
		WHERE product_id = ? AND branch_id = ?`

	var level model.InventoryLevel
	if err := r.db.GetContext(ctx, &level, r.q(query), productID, branchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return &level, nil
}

// ListStockCountsByBarcode returns all counts for a barcode, newest first.
func (r *SQLCatalogRepository) ListStockCountsByBarcode(ctx context.Context, barcode string) ([]model.StockCount, error) {
	query := `
		SELECT sc.id, sc.product_id, sc.branch_id, sc.barcode,
			COALESCE(sc.product_name, '') AS product_name,
			sc.counted_quantity,
			COALESCE(sc.counter_name, '') AS counter_name,
			COALESCE(sc.image_url, '') AS image_url,
			COALESCE(sc.notes, '') AS notes,
			sc.counted_at,
			COALESCE(b.name, '') AS branch_name
		FROM stock_counts sc
		LEFT JOIN branches b ON b.id = sc.branch_id
		WHERE sc.barcode = ?
		ORDER BY sc.counted_at DESC`

	var counts []model.StockCount
	if err := r.db.SelectContext(ctx, &counts, r.q(query), barcode); err != nil {
		return nil, fmt.Errorf("failed to list stock counts for %s: %w", barcode, err)
	}
	return counts, nil
}

// GetStats returns table sizes and connection pool details.
func (r *SQLCatalogRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["driver"] = r.driver

	for _, table := range []string{"products", "branches", "stock_counts", "inventory"} {
		var count int64
		if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}

	dbStats := r.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// SeedBranches creates any configured branch that is not present yet.
func (r *SQLCatalogRepository) SeedBranches(ctx context.Context, branches []branch.Entry) error {
	for _, entry := range branches {
		existing, err := r.GetBranchByCode(ctx, entry.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := r.CreateBranch(ctx, entry.Code, entry.Name); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection pool.
func (r *SQLCatalogRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*SQLCatalogRepository)(nil)
