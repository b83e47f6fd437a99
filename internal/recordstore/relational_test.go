package recordstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/model"
	"stockcount-api/internal/outcome"
	"stockcount-api/internal/repository"
)

var directory = branch.NewDirectory(map[string]string{
	"MAIN": "สาขาหลัก",
	"CITY": "สาขาตัวเมือง",
})

func newCatalog(t *testing.T) *repository.SQLCatalogRepository {
	t.Helper()
	repo, err := repository.NewSQLiteCatalogRepository(filepath.Join(t.TempDir(), "stock.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCatalogRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if err := repo.AddProduct(context.Background(), &model.Product{Barcode: "1234567890123", Name: "Green Tea"}); err != nil {
		t.Fatal(err)
	}
	return repo
}

func record(branchName string) model.StockRecord {
	return model.StockRecord{
		Barcode:     "1234567890123",
		ProductName: "Green Tea",
		Quantity:    15,
		Branch:      branchName,
		CounterName: "Somchai",
		SubmittedBy: "staff",
		CountedAt:   time.Date(2026, 10, 18, 7, 30, 0, 0, time.UTC),
	}
}

func TestRelationalAutoCreatesBranch(t *testing.T) {
	repo := newCatalog(t)
	store := NewRelationalStore(repo, directory, time.Second)
	ctx := context.Background()

	result := store.Persist(ctx, record("CITY"))
	if !result.OK() {
		t.Fatalf("Persist() = %v", result)
	}

	br, err := repo.GetBranchByCode(ctx, "CITY")
	if err != nil || br == nil {
		t.Fatalf("branch not created: %v, %v", br, err)
	}
	if br.Name != "สาขาตัวเมือง" {
		t.Errorf("created branch name = %q, want mapped display name", br.Name)
	}

	counts, err := repo.ListStockCountsByBarcode(ctx, "1234567890123")
	if err != nil || len(counts) != 1 {
		t.Fatalf("counts = %v, %v", counts, err)
	}
	c := counts[0]
	if c.ID != result.Value || c.BranchID != br.ID || c.CountedQuantity != 15 || c.Notes != "Counted by staff" {
		t.Errorf("stored count = %+v", c)
	}

	level, err := repo.GetInventory(ctx, c.ProductID, br.ID)
	if err != nil || level == nil || level.Quantity != 15 || level.LastCountedBy != "Somchai" {
		t.Errorf("inventory = %+v, %v", level, err)
	}
}

func TestRelationalUnknownBranchUsesRawInput(t *testing.T) {
	repo := newCatalog(t)
	store := NewRelationalStore(repo, directory, time.Second)

	if r := store.Persist(context.Background(), record("NEWBR")); !r.OK() {
		t.Fatalf("Persist() = %v", r)
	}
	br, _ := repo.GetBranchByCode(context.Background(), "NEWBR")
	if br == nil || br.Name != "NEWBR" {
		t.Errorf("branch = %+v, want code and name NEWBR", br)
	}
}

func TestResolveBranchOrder(t *testing.T) {
	repo := newCatalog(t)
	ctx := context.Background()
	store := NewRelationalStore(repo, directory, time.Second)

	existing, err := repo.CreateBranch(ctx, "MAIN", "สาขาหลัก")
	if err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{"MAIN", "main", "สาขาหลัก"} {
		br, err := store.ResolveBranch(ctx, raw)
		if err != nil || br == nil || br.ID != existing.ID {
			t.Errorf("ResolveBranch(%q) = %+v, %v; want existing row", raw, br, err)
		}
	}

	// display name given for a branch stored under its code only
	legacy, err := repo.CreateBranch(ctx, "CITY", "City Branch")
	if err != nil {
		t.Fatal(err)
	}
	br, err := store.ResolveBranch(ctx, "สาขาตัวเมือง")
	if err != nil || br == nil || br.ID != legacy.ID {
		t.Errorf("ResolveBranch(display) = %+v, %v; want lookup by code", br, err)
	}

	if _, err := store.ResolveBranch(ctx, "  "); err == nil {
		t.Error("ResolveBranch(blank) should fail")
	}
}

func TestRelationalMissingProduct(t *testing.T) {
	repo := newCatalog(t)
	rec := record("CITY")
	rec.Barcode = "000"

	result := NewRelationalStore(repo, directory, time.Second).Persist(context.Background(), rec)
	if result.Kind != outcome.KindFailure {
		t.Errorf("Persist() = %v, want failure", result)
	}
	if br, _ := repo.GetBranchByCode(context.Background(), "CITY"); br != nil {
		t.Error("no branch should be created when the product is missing")
	}
}

type flakyCatalog struct {
	repository.CatalogRepository
	inventoryErr error
	insertRows   int64
	insertErr    error
}

func (f *flakyCatalog) UpsertInventory(ctx context.Context, level model.InventoryLevel) error {
	return f.inventoryErr
}

func (f *flakyCatalog) InsertStockCount(ctx context.Context, count *model.StockCount) (int64, error) {
	if f.insertErr != nil || f.insertRows >= 0 {
		return f.insertRows, f.insertErr
	}
	return f.CatalogRepository.InsertStockCount(ctx, count)
}

func TestRelationalInventoryFailureTolerated(t *testing.T) {
	catalog := &flakyCatalog{CatalogRepository: newCatalog(t), inventoryErr: errors.New("inventory locked"), insertRows: -1}

	if r := NewRelationalStore(catalog, directory, time.Second).Persist(context.Background(), record("MAIN")); !r.OK() {
		t.Errorf("Persist() = %v, inventory failure must not fail the backend", r)
	}
}

func TestRelationalInsertFailures(t *testing.T) {
	noRows := &flakyCatalog{CatalogRepository: newCatalog(t), insertRows: 0}
	if r := NewRelationalStore(noRows, directory, time.Second).Persist(context.Background(), record("MAIN")); r.OK() {
		t.Error("zero inserted rows should fail")
	}

	broken := &flakyCatalog{CatalogRepository: newCatalog(t), insertErr: errors.New("constraint")}
	if r := NewRelationalStore(broken, directory, time.Second).Persist(context.Background(), record("MAIN")); r.OK() {
		t.Error("insert error should fail")
	}
}

// racingCatalog inserts the branch on behalf of another submission right
// before this one tries, so its own insert hits the unique code.
type racingCatalog struct {
	*repository.SQLCatalogRepository
	creates int
}

func (c *racingCatalog) CreateBranch(ctx context.Context, code, name string) (*model.Branch, error) {
	c.creates++
	if _, err := c.SQLCatalogRepository.CreateBranch(ctx, code, name); err != nil {
		return nil, err
	}
	return c.SQLCatalogRepository.CreateBranch(ctx, code, name)
}

func TestRelationalConcurrentBranchCreation(t *testing.T) {
	repo := newCatalog(t)
	catalog := &racingCatalog{SQLCatalogRepository: repo}
	ctx := context.Background()

	result := NewRelationalStore(catalog, directory, time.Second).Persist(ctx, record("NEWBR"))
	if !result.OK() {
		t.Fatalf("Persist() = %v, want the row inserted by the other submission to be reused", result)
	}
	if catalog.creates != 1 {
		t.Errorf("CreateBranch called %d times, want 1", catalog.creates)
	}

	br, err := repo.GetBranchByCode(ctx, "NEWBR")
	if err != nil || br == nil {
		t.Fatalf("GetBranchByCode() = %v, %v", br, err)
	}
	stats, err := repo.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["branches"] != int64(1) {
		t.Errorf("branches = %v, want exactly one NEWBR row", stats["branches"])
	}

	counts, err := repo.ListStockCountsByBarcode(ctx, "1234567890123")
	if err != nil || len(counts) != 1 || counts[0].BranchID != br.ID {
		t.Errorf("counts = %+v, %v", counts, err)
	}
}
