package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/middleware"
	"stockcount-api/internal/model"
	"stockcount-api/internal/outcome"
	"stockcount-api/internal/recordstore"
	"stockcount-api/internal/repository"
	"stockcount-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type sheetProducts map[string]string

func (s sheetProducts) FindProduct(ctx context.Context, barcode string) (*model.Product, error) {
	if name, ok := s[barcode]; ok {
		return &model.Product{Barcode: barcode, Name: name}, nil
	}
	return nil, nil
}

type stubStore struct {
	name   string
	result outcome.Result
	last   model.StockRecord
}

func (s *stubStore) Name() string { return s.name }

func (s *stubStore) Persist(ctx context.Context, rec model.StockRecord) outcome.Result {
	s.last = rec
	return s.result
}

func newCatalog(t *testing.T) *repository.SQLCatalogRepository {
	t.Helper()
	repo, err := repository.NewSQLiteCatalogRepository(filepath.Join(t.TempDir(), "stock.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	if err := repo.AddProduct(context.Background(), &model.Product{Barcode: "1234567890123", Name: "Green Tea", SKU: "GT-01", SellingPrice: 25}); err != nil {
		t.Fatal(err)
	}
	return repo
}

func stockRouter(h *StockHandler, session *model.SessionData) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if session != nil {
				req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, session))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/get_product/{barcode}", h.GetProduct)
	r.Post("/submit_stock", h.SubmitStock)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestGetProduct(t *testing.T) {
	lookup := service.NewLookupService(newCatalog(t), sheetProducts{"885": "Sheet Soap"}, time.UTC, 0)
	h := stockRouter(NewStockHandler(lookup, service.NewSubmissionService(nil)), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_product/1234567890123", nil))
	body := decodeBody(t, rec)
	if rec.Code != http.StatusOK || body["name"] != "Green Tea" || body["sku"] != "GT-01" || body["selling_price"] != 25.0 {
		t.Errorf("relational: %d %v", rec.Code, body)
	}
	if _, ok := body["duplicate_warning"]; ok {
		t.Error("no warning expected without prior counts")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_product/885", nil))
	body = decodeBody(t, rec)
	if rec.Code != http.StatusOK || body["product_name"] != "Sheet Soap" || body["barcode"] != "885" || len(body) != 2 {
		t.Errorf("sheet: %d %v", rec.Code, body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_product/000", nil))
	body = decodeBody(t, rec)
	if rec.Code != http.StatusNotFound || body["error"] != "Product not found" {
		t.Errorf("miss: %d %v", rec.Code, body)
	}
}

func TestGetProductNoDataSource(t *testing.T) {
	h := stockRouter(NewStockHandler(service.NewLookupService(nil, nil, nil, 0), service.NewSubmissionService(nil)), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_product/1", nil))
	if rec.Code != http.StatusInternalServerError || decodeBody(t, rec)["error"] == nil {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitStock(t *testing.T) {
	repo := newCatalog(t)
	rel := recordstore.NewRelationalStore(repo, branch.NewDirectory(map[string]string{"CITY": "สาขาตัวเมือง"}), time.Second)
	sheet := &stubStore{name: recordstore.SheetName, result: outcome.Failuref("quota exceeded")}
	h := stockRouter(
		NewStockHandler(service.NewLookupService(repo, nil, time.UTC, 0), service.NewSubmissionService(nil, rel, sheet)),
		&model.SessionData{Username: "bob", Role: model.RoleStaff},
	)

	payload := `{"barcode":"1234567890123","product_name":"Green Tea","quantity":15,"branch":"CITY"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit_stock", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SubmitStockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || !resp.SavedTo["supabase"] || resp.SavedTo["sheets"] {
		t.Errorf("response = %+v", resp)
	}
	if sheet.last.SubmittedBy != "bob" || sheet.last.CounterName != "Unknown" {
		t.Errorf("record = %+v", sheet.last)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_product/1234567890123", nil))
	warning, ok := decodeBody(t, rec)["duplicate_warning"].(map[string]interface{})
	if !ok || warning["total_counts"] != 1.0 || warning["last_branch"] != "สาขาตัวเมือง" {
		t.Errorf("duplicate_warning = %v", warning)
	}
}

func TestSubmitStockBadRequests(t *testing.T) {
	store := &stubStore{name: recordstore.SheetName, result: outcome.Success("ok")}
	h := stockRouter(NewStockHandler(service.NewLookupService(nil, nil, nil, 0), service.NewSubmissionService(nil, store)), nil)

	for name, payload := range map[string]string{
		"malformed":         `{"barcode":`,
		"wrong type":        `{"barcode":"1","quantity":"many","branch":"CITY"}`,
		"missing barcode":   `{"quantity":1,"branch":"CITY"}`,
		"missing branch":    `{"barcode":"1","quantity":1}`,
		"negative quantity": `{"barcode":"1","quantity":-3,"branch":"CITY"}`,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit_stock", strings.NewReader(payload)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestSubmitStockValidationDetails(t *testing.T) {
	store := &stubStore{name: recordstore.SheetName, result: outcome.Success("ok")}
	h := stockRouter(NewStockHandler(service.NewLookupService(nil, nil, nil, 0), service.NewSubmissionService(nil, store)), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit_stock",
		strings.NewReader(`{"barcode":"1","quantity":-3,"branch":"CITY"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["code"] != "VALIDATION_ERROR" || body["success"] != false {
		t.Errorf("body = %v", body)
	}
	details, ok := body["details"].([]interface{})
	if !ok || len(details) != 1 {
		t.Fatalf("details = %v", body["details"])
	}
	field := details[0].(map[string]interface{})
	if field["field"] != "quantity" || field["message"] != "must not be negative" {
		t.Errorf("details[0] = %v", field)
	}
}

func TestSubmitStockTotalFailure(t *testing.T) {
	failing := &stubStore{name: recordstore.SheetName, result: outcome.Failuref("sheet id invalid: secret detail")}
	h := stockRouter(NewStockHandler(service.NewLookupService(nil, nil, nil, 0),
		service.NewSubmissionService(nil, recordstore.Unavailable(recordstore.RelationalName), failing)), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit_stock",
		strings.NewReader(`{"barcode":"1","quantity":1,"branch":"CITY"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Errorf("backend detail leaked: %s", rec.Body.String())
	}
}
