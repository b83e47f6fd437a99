// Package sheets talks to the Google Sheets values API.
package sheets

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// ValuesClient is the range-addressed subset of the Sheets API used here.
type ValuesClient interface {
	// Get reads the cells of readRange, e.g. "Sheet1!D:E".
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)

	// Append adds rows after the table in writeRange and returns the updated cell count.
	Append(ctx context.Context, spreadsheetID, writeRange string, rows [][]interface{}) (int64, error)

	// Update overwrites writeRange and returns the updated cell count.
	Update(ctx context.Context, spreadsheetID, writeRange string, rows [][]interface{}) (int64, error)
}

// GoogleClient implements ValuesClient with a service account.
type GoogleClient struct {
	svc     *gsheets.Service
	timeout time.Duration
}

// NewGoogleClient builds a Sheets client from a service-account credentials file.
func NewGoogleClient(ctx context.Context, credentialsFile string, timeout time.Duration) (*GoogleClient, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("google credentials file is empty")
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	log.Printf("[SheetsClient] Initialized with credentials %s", credentialsFile)
	return &GoogleClient{svc: svc, timeout: timeout}, nil
}

// Get reads a range.
func (c *GoogleClient) Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", readRange, err)
	}
	return resp.Values, nil
}

// Append adds rows with RAW input.
func (c *GoogleClient) Append(ctx context.Context, spreadsheetID, writeRange string, rows [][]interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, writeRange, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", writeRange, err)
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return resp.Updates.UpdatedCells, nil
}

// Update overwrites a range with RAW input.
func (c *GoogleClient) Update(ctx context.Context, spreadsheetID, writeRange string, rows [][]interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", writeRange, err)
	}
	return resp.UpdatedCells, nil
}

// Ensure GoogleClient implements ValuesClient
var _ ValuesClient = (*GoogleClient)(nil)
