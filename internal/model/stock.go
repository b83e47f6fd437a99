package model

import "time"

// StockSubmission is one staff-initiated count as received over HTTP.
type StockSubmission struct {
	Barcode     string `json:"barcode"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Branch      string `json:"branch"`
	CounterName string `json:"counter_name"`
	ImageData   string `json:"image_data"`
	SubmittedBy string `json:"-"`
}

// StockRecord is the durable projection of a submission handed to record stores.
type StockRecord struct {
	Barcode     string
	ProductName string
	Quantity    int
	Branch      string
	CounterName string
	ImageURL    string
	SubmittedBy string
	CountedAt   time.Time
}

// StockCount is a row in the relational stock_counts table.
type StockCount struct {
	ID              string    `json:"id" db:"id"`
	ProductID       string    `json:"product_id" db:"product_id"`
	BranchID        string    `json:"branch_id" db:"branch_id"`
	Barcode         string    `json:"barcode" db:"barcode"`
	ProductName     string    `json:"product_name" db:"product_name"`
	CountedQuantity int       `json:"counted_quantity" db:"counted_quantity"`
	CounterName     string    `json:"counter_name" db:"counter_name"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	Notes           string    `json:"notes" db:"notes"`
	CountedAt       time.Time `json:"counted_at" db:"counted_at"`
	BranchName      string    `json:"branch_name,omitempty" db:"branch_name"`
}

// SubmissionResult is the aggregate verdict of one submission.
type SubmissionResult struct {
	Success  bool
	SavedTo  map[string]bool
	ImageURL string
}
