package model

// Product is a catalog entry looked up by barcode.
type Product struct {
	ID           string  `json:"id" db:"id"`
	Barcode      string  `json:"barcode" db:"barcode"`
	Name         string  `json:"name" db:"name"`
	SKU          string  `json:"sku" db:"sku"`
	Category     string  `json:"category" db:"category"`
	SellingPrice float64 `json:"selling_price" db:"selling_price"`
}

// Branch is a physical shop location.
type Branch struct {
	ID       string `json:"id" db:"id"`
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// DuplicateWarning tells the counter that a barcode has been counted before.
type DuplicateWarning struct {
	Message         string `json:"message"`
	Details         string `json:"details"`
	DateInfo        string `json:"date_info,omitempty"`
	TotalCounts     int    `json:"total_counts"`
	LastBranch      string `json:"last_branch"`
	LastCountNumber int    `json:"last_count_number"`
	LastCountedAt   string `json:"last_counted_at"`
}

// LookupResult is a product resolved by one of the lookup backends.
// Relational hits carry the full catalog row; sheet hits only barcode and name.
type LookupResult struct {
	Source  string
	Product Product
	Warning *DuplicateWarning
}
