package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"stockcount-api/internal/middleware"
	"stockcount-api/internal/model"
	"stockcount-api/internal/recordstore"
	"stockcount-api/internal/service"
	"stockcount-api/pkg/apierror"
	"stockcount-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// MaxSubmissionBytes bounds a submission body, base64 photo included.
const MaxSubmissionBytes = 20 << 20

// StockHandler serves product lookup and stock submission.
// Both routes answer with bare JSON objects, not the success/data envelope.
type StockHandler struct {
	lookup      *service.LookupService
	submissions *service.SubmissionService
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(lookup *service.LookupService, submissions *service.SubmissionService) *StockHandler {
	return &StockHandler{
		lookup:      lookup,
		submissions: submissions,
	}
}

// catalogProduct is the relational lookup shape.
type catalogProduct struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Barcode          string                  `json:"barcode"`
	SKU              string                  `json:"sku"`
	Category         string                  `json:"category"`
	SellingPrice     float64                 `json:"selling_price"`
	DuplicateWarning *model.DuplicateWarning `json:"duplicate_warning,omitempty"`
}

// sheetProduct is the spreadsheet lookup shape.
type sheetProduct struct {
	Barcode     string `json:"barcode"`
	ProductName string `json:"product_name"`
}

// GetProduct handles GET /get_product/{barcode}
func (h *StockHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(chi.URLParam(r, "barcode"))
	if barcode == "" {
		response.Error(w, apierror.BadRequest("barcode is required"))
		return
	}

	result, err := h.lookup.Lookup(r.Context(), barcode)
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.Error(w, apierror.NotFound("Product not found"))
		return
	case errors.Is(err, service.ErrNoDataSource):
		log.Printf("[StockHandler] Lookup for %s with no data source configured", barcode)
		response.Error(w, apierror.InternalError("No product data source available"))
		return
	case err != nil:
		log.Printf("[StockHandler] Lookup for %s failed: %v", barcode, err)
		response.Error(w, err)
		return
	}

	p := result.Product
	if result.Source == recordstore.SheetName {
		response.Raw(w, http.StatusOK, sheetProduct{Barcode: p.Barcode, ProductName: p.Name})
		return
	}

	response.Raw(w, http.StatusOK, catalogProduct{
		ID:               p.ID,
		Name:             p.Name,
		Barcode:          p.Barcode,
		SKU:              p.SKU,
		Category:         p.Category,
		SellingPrice:     p.SellingPrice,
		DuplicateWarning: result.Warning,
	})
}

// SubmitStockResponse is the body of a successful submission.
type SubmitStockResponse struct {
	Success bool            `json:"success"`
	SavedTo map[string]bool `json:"saved_to"`
}

// SubmitStock handles POST /submit_stock
func (h *StockHandler) SubmitStock(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSubmissionBytes))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return
	}

	var sub model.StockSubmission
	if err := json.Unmarshal(body, &sub); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	if session := middleware.GetSessionFromContext(r.Context()); session != nil {
		sub.SubmittedBy = session.Username
	}

	result, err := h.submissions.Submit(r.Context(), sub)
	var fieldErr *service.InvalidFieldError
	if errors.As(err, &fieldErr) {
		response.Error(w, apierror.ValidationError(err.Error(), apierror.FieldError{
			Field:   fieldErr.Field,
			Message: fieldErr.Message,
		}))
		return
	}
	if errors.Is(err, service.ErrInvalidSubmission) {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}
	if err != nil {
		log.Printf("[StockHandler] Submit %s failed: %v", sub.Barcode, err)
		response.Error(w, err)
		return
	}

	if !result.Success {
		response.Error(w, apierror.InternalError("Failed to save stock count"))
		return
	}

	response.Raw(w, http.StatusOK, SubmitStockResponse{
		Success: true,
		SavedTo: result.SavedTo,
	})
}
