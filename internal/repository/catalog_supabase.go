package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"

	"stockcount-api/internal/model"
)

// SupabaseCatalogRepository implements CatalogRepository against a Supabase
// project's PostgREST endpoint (/rest/v1/<table>).
type SupabaseCatalogRepository struct {
	client  *postgrest.Client
	timeout time.Duration
}

// NewSupabaseCatalogRepository creates a REST catalog client.
func NewSupabaseCatalogRepository(baseURL, apiKey string, timeout time.Duration) (*SupabaseCatalogRepository, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := postgrest.NewClient(baseURL+"/rest/v1", "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", client.ClientError)
	}

	log.Printf("[SupabaseCatalogRepository] Initialized for %s", baseURL)
	return &SupabaseCatalogRepository{client: client, timeout: timeout}, nil
}

type execResult struct {
	body  []byte
	count int64
	err   error
}

// exec runs one query. postgrest-go requests carry no context, so the
// caller is released when ctx or the repository timeout expires.
func (r *SupabaseCatalogRepository) exec(ctx context.Context, table string, query *postgrest.FilterBuilder) ([]byte, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan execResult, 1)
	go func() {
		body, count, err := query.Execute()
		done <- execResult{body: body, count: int64(count), err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, 0, fmt.Errorf("%s: %w", table, res.err)
		}
		return res.body, res.count, nil
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", table, ctx.Err())
	}
}

// execInto runs a query and decodes the JSON body into out.
func (r *SupabaseCatalogRepository) execInto(ctx context.Context, table string, query *postgrest.FilterBuilder, out interface{}) error {
	body, _, err := r.exec(ctx, table, query)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return nil
}

// GetProductByBarcode finds an active product by barcode.
func (r *SupabaseCatalogRepository) GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	query := r.client.From("products").
		Select("id,barcode,name,sku,category,selling_price", "", false).
		Eq("barcode", barcode).
		Eq("is_active", "true").
		Limit(1, "")

	var rows []model.Product
	if err := r.execInto(ctx, "products", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AddProduct inserts a catalog product. The id is assigned by the database when empty.
func (r *SupabaseCatalogRepository) AddProduct(ctx context.Context, product *model.Product) error {
	payload := map[string]interface{}{
		"barcode":       product.Barcode,
		"name":          product.Name,
		"sku":           product.SKU,
		"category":      product.Category,
		"selling_price": product.SellingPrice,
		"is_active":     true,
	}
	if product.ID != "" {
		payload["id"] = product.ID
	}

	var rows []model.Product
	query := r.client.From("products").Insert(payload, false, "", "representation", "")
	if err := r.execInto(ctx, "products", query, &rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		product.ID = rows[0].ID
	}
	return nil
}

// GetBranchByName finds a branch by display name.
func (r *SupabaseCatalogRepository) GetBranchByName(ctx context.Context, name string) (*model.Branch, error) {
	return r.getBranch(ctx, "name", name)
}

// GetBranchByCode finds a branch by short code.
func (r *SupabaseCatalogRepository) GetBranchByCode(ctx context.Context, code string) (*model.Branch, error) {
	return r.getBranch(ctx, "code", code)
}

func (r *SupabaseCatalogRepository) getBranch(ctx context.Context, column, value string) (*model.Branch, error) {
	query := r.client.From("branches").
		Select("id,code,name,is_active", "", false).
		Eq(column, value).
		Limit(1, "")

	var rows []model.Branch
	if err := r.execInto(ctx, "branches", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateBranch inserts a new active branch. A duplicate code surfaces as
// an error; callers re-read by code.
func (r *SupabaseCatalogRepository) CreateBranch(ctx context.Context, code, name string) (*model.Branch, error) {
	payload := map[string]interface{}{
		"code":      code,
		"name":      name,
		"is_active": true,
	}

	var rows []model.Branch
	query := r.client.From("branches").Insert(payload, false, "", "representation", "")
	if err := r.execInto(ctx, "branches", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("branch insert returned no rows")
	}
	return &rows[0], nil
}

// InsertStockCount inserts one count and returns the number of rows echoed back.
func (r *SupabaseCatalogRepository) InsertStockCount(ctx context.Context, count *model.StockCount) (int64, error) {
	countedAt := count.CountedAt
	if countedAt.IsZero() {
		countedAt = time.Now()
	}

	payload := map[string]interface{}{
		"product_id":       count.ProductID,
		"branch_id":        count.BranchID,
		"barcode":          count.Barcode,
		"product_name":     count.ProductName,
		"counted_quantity": count.CountedQuantity,
		"counter_name":     count.CounterName,
		"image_url":        count.ImageURL,
		"notes":            count.Notes,
		"counted_at":       countedAt.UTC().Format(time.RFC3339Nano),
	}

	var rows []map[string]interface{}
	query := r.client.From("stock_counts").Insert(payload, false, "", "representation", "")
	if err := r.execInto(ctx, "stock_counts", query, &rows); err != nil {
		return 0, err
	}
	if len(rows) > 0 {
		if id, ok := rows[0]["id"].(string); ok {
			count.ID = id
		}
	}
	return int64(len(rows)), nil
}

// UpsertInventory merges on (product_id, branch_id), replacing the quantity.
func (r *SupabaseCatalogRepository) UpsertInventory(ctx context.Context, level model.InventoryLevel) error {
	payload := map[string]interface{}{
		"product_id":      level.ProductID,
		"branch_id":       level.BranchID,
		"quantity":        level.Quantity,
		"last_counted_at": level.LastCountedAt.UTC().Format(time.RFC3339Nano),
		"last_counted_by": level.LastCountedBy,
		"updated_at":      time.Now().UTC().Format(time.RFC3339Nano),
	}

	query := r.client.From("inventory").Upsert(payload, "product_id,branch_id", "minimal", "")
	_, _, err := r.exec(ctx, "inventory", query)
	return err
}

// stockCountRow is a stock_counts row with the embedded branch.
type stockCountRow struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	BranchID        string `json:"branch_id"`
	Barcode         string `json:"barcode"`
	ProductName     string `json:"product_name"`
	CountedQuantity int    `json:"counted_quantity"`
	CounterName     string `json:"counter_name"`
	ImageURL        string `json:"image_url"`
	Notes           string `json:"notes"`
	CountedAt       string `json:"counted_at"`
	Branches        *struct {
		Name string `json:"name"`
	} `json:"branches"`
}

// ListStockCountsByBarcode returns all counts for a barcode, newest first.
func (r *SupabaseCatalogRepository) ListStockCountsByBarcode(ctx context.Context, barcode string) ([]model.StockCount, error) {
	query := r.client.From("stock_counts").
		Select("*,branches(name)", "", false).
		Eq("barcode", barcode).
		Order("counted_at", &postgrest.OrderOpts{Ascending: false})

	var rows []stockCountRow
	if err := r.execInto(ctx, "stock_counts", query, &rows); err != nil {
		return nil, err
	}

	counts := make([]model.StockCount, 0, len(rows))
	for _, row := range rows {
		count := model.StockCount{
			ID:              row.ID,
			ProductID:       row.ProductID,
			BranchID:        row.BranchID,
			Barcode:         row.Barcode,
			ProductName:     row.ProductName,
			CountedQuantity: row.CountedQuantity,
			CounterName:     row.CounterName,
			ImageURL:        row.ImageURL,
			Notes:           row.Notes,
			CountedAt:       parseTimestamp(row.CountedAt),
		}
		if row.Branches != nil {
			count.BranchName = row.Branches.Name
		}
		counts = append(counts, count)
	}
	return counts, nil
}

// parseTimestamp accepts timestamptz and plain timestamp renderings.
func parseTimestamp(value string) time.Time {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07", "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetStats returns exact row counts per table from HEAD requests.
func (r *SupabaseCatalogRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["driver"] = "supabase"

	for _, table := range []string{"products", "branches", "stock_counts", "inventory"} {
		query := r.client.From(table).Select("id", "exact", true)
		_, total, err := r.exec(ctx, table, query)
		if err != nil {
			return nil, err
		}
		stats[table] = total
	}
	return stats, nil
}

// Close is a no-op; postgrest-go shares the default transport.
func (r *SupabaseCatalogRepository) Close() error {
	return nil
}

// Ensure SupabaseCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*SupabaseCatalogRepository)(nil)
