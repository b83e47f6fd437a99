package recordstore

import (
	"context"
	"time"

	"stockcount-api/internal/model"
	"stockcount-api/internal/outcome"
	"stockcount-api/internal/sheets"
)

// SheetName is the saved_to key of the spreadsheet backend.
const SheetName = "sheets"

// SheetStore appends counts to the stock spreadsheet. It performs no validation.
type SheetStore struct {
	client        sheets.ValuesClient
	spreadsheetID string
	sheetName     string
	loc           *time.Location
}

// NewSheetStore creates a spreadsheet record store writing times in loc.
func NewSheetStore(client sheets.ValuesClient, spreadsheetID, sheetName string, loc *time.Location) *SheetStore {
	if loc == nil {
		loc = time.Local
	}
	return &SheetStore{client: client, spreadsheetID: spreadsheetID, sheetName: sheetName, loc: loc}
}

// Name implements Store.
func (s *SheetStore) Name() string { return SheetName }

// Row renders the nine stock columns for rec.
func (s *SheetStore) Row(rec model.StockRecord) []interface{} {
	at := rec.CountedAt.In(s.loc)
	return []interface{}{
		at.Format("2006-01-02"),
		at.Format("15:04:05"),
		rec.Barcode,
		rec.ProductName,
		rec.Quantity,
		rec.Branch,
		rec.SubmittedBy,
		rec.ImageURL,
		rec.CounterName,
	}
}

// Persist appends one row. It succeeds iff the API reports updated cells.
func (s *SheetStore) Persist(ctx context.Context, rec model.StockRecord) outcome.Result {
	updated, err := s.client.Append(ctx, s.spreadsheetID, sheets.A1(s.sheetName, sheets.StockColumns),
		[][]interface{}{s.Row(rec)})
	if err != nil {
		return outcome.Failure(err)
	}
	if updated < 1 {
		return outcome.Failuref("append updated no cells")
	}
	return outcome.Success(s.spreadsheetID)
}

var _ Store = (*SheetStore)(nil)
