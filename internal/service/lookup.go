package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stockcount-api/internal/model"
	"stockcount-api/internal/recordstore"
	"stockcount-api/internal/repository"
)

// ProductSource is a barcode -> product lookup such as the product spreadsheet.
type ProductSource interface {
	FindProduct(ctx context.Context, barcode string) (*model.Product, error)
}

// LookupService resolves a barcode against the relational catalog, then the spreadsheet.
type LookupService struct {
	catalog repository.CatalogRepository
	sheet   ProductSource
	loc     *time.Location
	timeout time.Duration
}

// NewLookupService creates a lookup service. Either source may be nil.
// Each backend call is bounded by timeout, 15s when zero.
func NewLookupService(catalog repository.CatalogRepository, sheet ProductSource, loc *time.Location, timeout time.Duration) *LookupService {
	if loc == nil {
		loc = time.Local
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LookupService{catalog: catalog, sheet: sheet, loc: loc, timeout: timeout}
}

// Lookup queries each backend at most once. A relational error falls through
// to the spreadsheet; a spreadsheet error counts as a miss.
func (s *LookupService) Lookup(ctx context.Context, barcode string) (*model.LookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if s.catalog == nil && s.sheet == nil {
		return nil, ErrNoDataSource
	}

	if s.catalog != nil {
		product, err := s.findInCatalog(ctx, barcode)
		if err != nil {
			log.Printf("[LookupService] Relational lookup failed for %s: %v", barcode, err)
		}
		if product != nil {
			return &model.LookupResult{
				Source:  recordstore.RelationalName,
				Product: *product,
				Warning: s.warning(ctx, barcode),
			}, nil
		}
	}

	if s.sheet != nil {
		sheetCtx, cancel := context.WithTimeout(ctx, s.timeout)
		product, err := s.sheet.FindProduct(sheetCtx, barcode)
		cancel()
		if err != nil {
			log.Printf("[LookupService] Sheet lookup failed for %s: %v", barcode, err)
		}
		if product != nil {
			return &model.LookupResult{Source: recordstore.SheetName, Product: *product}, nil
		}
	}

	return nil, ErrProductNotFound
}

func (s *LookupService) findInCatalog(ctx context.Context, barcode string) (*model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.catalog.GetProductByBarcode(ctx, barcode)
}

// warning summarizes earlier counts of barcode. History errors only drop the warning.
func (s *LookupService) warning(ctx context.Context, barcode string) *model.DuplicateWarning {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.catalog.ListStockCountsByBarcode(ctx, barcode)
	if err != nil {
		log.Printf("[LookupService] Count history failed for %s: %v", barcode, err)
		return nil
	}
	return DuplicateWarning(counts, s.loc)
}

// DuplicateWarning builds the prior-count warning from counts ordered newest first.
// It returns nil when there are none.
func DuplicateWarning(counts []model.StockCount, loc *time.Location) *model.DuplicateWarning {
	if len(counts) == 0 {
		return nil
	}

	latest := counts[0]
	branchName := latest.BranchName
	if branchName == "" {
		branchName = latest.BranchID
	}
	countedAt := latest.CountedAt.In(loc).Format("02/01/2006 15:04")

	return &model.DuplicateWarning{
		Message:         fmt.Sprintf("This product has already been counted %d time(s)", len(counts)),
		Details:         fmt.Sprintf("Last count #%d at %s", len(counts), branchName),
		DateInfo:        "Last counted on " + countedAt,
		TotalCounts:     len(counts),
		LastBranch:      branchName,
		LastCountNumber: len(counts),
		LastCountedAt:   countedAt,
	}
}
