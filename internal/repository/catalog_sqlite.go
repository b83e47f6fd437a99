package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// NewSQLiteCatalogRepository opens (or creates) a SQLite catalog database.
// dbPath is the path to the database file (e.g., "./data/stock.db").
func NewSQLiteCatalogRepository(dbPath string) (*SQLCatalogRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteCatalogRepository] Initialized with database: %s", dbPath)
	return &SQLCatalogRepository{db: db, driver: "sqlite"}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	sku TEXT,
	barcode TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	category TEXT,
	selling_price REAL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS branches (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS stock_counts (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id),
	branch_id TEXT NOT NULL REFERENCES branches(id),
	barcode TEXT NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	counted_quantity INTEGER NOT NULL,
	counter_name TEXT NOT NULL DEFAULT 'Unknown',
	image_url TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	counted_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stock_counts_barcode ON stock_counts(barcode);
CREATE TABLE IF NOT EXISTS inventory (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id),
	branch_id TEXT NOT NULL REFERENCES branches(id),
	quantity INTEGER NOT NULL DEFAULT 0,
	last_counted_at DATETIME,
	last_counted_by TEXT,
	updated_at DATETIME NOT NULL,
	UNIQUE (product_id, branch_id)
);
`
