package sheets

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Column layout of the product and stock sheets.
const (
	ProductColumns = "D:E"
	ProductHeader  = "D1:E1"
	StockColumns   = "A:I"
	StockHeader    = "A1:I1"
)

// StockHeaders names the nine stock sheet columns in order.
var StockHeaders = []interface{}{
	"Date", "Time", "Barcode", "Product Name", "Quantity", "Branch", "User", "Image URL", "Counter Name",
}

// ProductHeaders names the product sheet barcode and name columns.
var ProductHeaders = []interface{}{"Barcode", "Product Name"}

// A1 qualifies a range with a sheet name, quoting names that need it.
func A1(sheetName, cells string) string {
	if sheetName == "" {
		return cells
	}
	if strings.ContainsAny(sheetName, " !'") {
		sheetName = "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
	}
	return sheetName + "!" + cells
}

// InitHeaders writes the header rows to both sheets.
func InitHeaders(ctx context.Context, client ValuesClient, productSheetID, productSheet, stockSheetID, stockSheet string) error {
	if _, err := client.Update(ctx, productSheetID, A1(productSheet, ProductHeader), [][]interface{}{ProductHeaders}); err != nil {
		return fmt.Errorf("product headers: %w", err)
	}
	if _, err := client.Update(ctx, stockSheetID, A1(stockSheet, StockHeader), [][]interface{}{StockHeaders}); err != nil {
		return fmt.Errorf("stock headers: %w", err)
	}
	log.Println("[Sheets] Header rows initialized")
	return nil
}
