package sheets

import (
	"context"
	"fmt"
	"strings"

	"stockcount-api/internal/model"
)

// ProductSheet resolves barcodes against the product sheet's barcode/name columns.
type ProductSheet struct {
	client        ValuesClient
	spreadsheetID string
	sheetName     string
}

// NewProductSheet creates a product source.
func NewProductSheet(client ValuesClient, spreadsheetID, sheetName string) *ProductSheet {
	return &ProductSheet{client: client, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// FindProduct returns the first row whose barcode matches, or (nil, nil).
// The header row is skipped.
func (p *ProductSheet) FindProduct(ctx context.Context, barcode string) (*model.Product, error) {
	rows, err := p.client.Get(ctx, p.spreadsheetID, A1(p.sheetName, ProductColumns))
	if err != nil {
		return nil, err
	}

	barcode = strings.TrimSpace(barcode)
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		if cell(row[0]) == barcode {
			return &model.Product{Barcode: barcode, Name: cell(row[1])}, nil
		}
	}
	return nil, nil
}

func cell(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
