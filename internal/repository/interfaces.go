package repository

import (
	"context"

	"stockcount-api/internal/model"
)

// CatalogRepository is the relational record backend: products, branches,
// stock_counts and inventory. Lookups return (nil, nil) on a miss.
type CatalogRepository interface {
	// GetProductByBarcode finds an active product by barcode.
	GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error)

	// AddProduct inserts a catalog product.
	AddProduct(ctx context.Context, product *model.Product) error

	// GetBranchByName finds a branch by display name.
	GetBranchByName(ctx context.Context, name string) (*model.Branch, error)

	// GetBranchByCode finds a branch by short code.
	GetBranchByCode(ctx context.Context, code string) (*model.Branch, error)

	// CreateBranch inserts a new active branch and returns it.
	CreateBranch(ctx context.Context, code, name string) (*model.Branch, error)

	// InsertStockCount inserts one count and returns the number of rows written.
	InsertStockCount(ctx context.Context, count *model.StockCount) (int64, error)

	// UpsertInventory replaces the current quantity for (product, branch).
	UpsertInventory(ctx context.Context, level model.InventoryLevel) error

	// ListStockCountsByBarcode returns every count for a barcode across branches, newest first.
	ListStockCountsByBarcode(ctx context.Context, barcode string) ([]model.StockCount, error)

	// GetStats returns row counts and backend details.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close releases the backend connection.
	Close() error
}

// UserRepository defines login account lookups.
type UserRepository interface {
	// GetUserByUsername returns (nil, nil) when the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}
