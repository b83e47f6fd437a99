package recordstore

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/model"
	"stockcount-api/internal/outcome"
	"stockcount-api/internal/repository"
)

// RelationalName is the saved_to key of the relational backend.
const RelationalName = "supabase"

// RelationalStore writes counts to the catalog database.
type RelationalStore struct {
	catalog  repository.CatalogRepository
	branches *branch.Directory
	timeout  time.Duration
}

// NewRelationalStore creates a relational record store.
func NewRelationalStore(catalog repository.CatalogRepository, branches *branch.Directory, timeout time.Duration) *RelationalStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RelationalStore{catalog: catalog, branches: branches, timeout: timeout}
}

// Name implements Store.
func (s *RelationalStore) Name() string { return RelationalName }

// Persist resolves product and branch, inserts the count and refreshes inventory.
func (s *RelationalStore) Persist(ctx context.Context, rec model.StockRecord) outcome.Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.catalog.GetProductByBarcode(ctx, rec.Barcode)
	if err != nil {
		return outcome.Failure(fmt.Errorf("product lookup: %w", err))
	}
	if product == nil {
		return outcome.Failuref("product %s not found", rec.Barcode)
	}

	br, err := s.ResolveBranch(ctx, rec.Branch)
	if err != nil {
		return outcome.Failure(fmt.Errorf("branch %q: %w", rec.Branch, err))
	}

	count := &model.StockCount{
		ProductID:       product.ID,
		BranchID:        br.ID,
		Barcode:         rec.Barcode,
		ProductName:     rec.ProductName,
		CountedQuantity: rec.Quantity,
		CounterName:     rec.CounterName,
		ImageURL:        rec.ImageURL,
		Notes:           "Counted by " + rec.SubmittedBy,
		CountedAt:       rec.CountedAt,
	}

	rows, err := s.catalog.InsertStockCount(ctx, count)
	if err != nil {
		return outcome.Failure(err)
	}
	if rows < 1 {
		return outcome.Failuref("stock count insert returned no rows")
	}

	err = s.catalog.UpsertInventory(ctx, model.InventoryLevel{
		ProductID:     product.ID,
		BranchID:      br.ID,
		Quantity:      rec.Quantity,
		LastCountedAt: rec.CountedAt,
		LastCountedBy: rec.CounterName,
	})
	if err != nil {
		log.Printf("[RelationalStore] Inventory update failed for %s at %s: %v", rec.Barcode, br.Name, err)
	}

	return outcome.Success(count.ID)
}

// ResolveBranch finds the branch row for a code or display name in the order
// mapped display name, raw input, code; it creates the branch when none match.
func (s *RelationalStore) ResolveBranch(ctx context.Context, raw string) (*model.Branch, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("branch is empty")
	}

	for _, name := range s.branches.Candidates(raw) {
		br, err := s.catalog.GetBranchByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if br != nil {
			return br, nil
		}
	}

	code := s.branches.Code(raw)
	br, err := s.catalog.GetBranchByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if br != nil {
		return br, nil
	}

	name := s.branches.DisplayName(raw)
	if s.branches.Known(raw) {
		log.Printf("[RelationalStore] Configured branch %s has no row yet, creating name=%s", code, name)
	} else {
		log.Printf("[RelationalStore] Branch %q not found, creating code=%s name=%s", raw, code, name)
	}

	created, createErr := s.catalog.CreateBranch(ctx, code, name)
	if createErr == nil {
		return created, nil
	}

	// A concurrent submission may have inserted the same code first.
	br, err = s.catalog.GetBranchByCode(ctx, code)
	if err == nil && br != nil {
		return br, nil
	}
	return nil, createErr
}

var _ Store = (*RelationalStore)(nil)
