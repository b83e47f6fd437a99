package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/recordstore"
)

type driveState bool

func (d driveState) IsAuthorized(ctx context.Context) bool { return bool(d) }

func TestDriveStatus(t *testing.T) {
	cases := []struct {
		name  string
		drive DriveAuthorizer
		want  bool
	}{
		{"not configured", nil, false},
		{"unauthorized", driveState(false), false},
		{"authorized", driveState(true), true},
	}
	for _, c := range cases {
		h := NewAdminHandler(AdminConfig{Drive: c.drive})
		rec := httptest.NewRecorder()
		h.DriveStatus(rec, httptest.NewRequest(http.MethodGet, "/drive_status", nil))

		body := decodeBody(t, rec)
		if body["authorized"] != c.want || body["message"] == "" {
			t.Errorf("%s: body = %v", c.name, body)
		}
	}
}

func TestAdminStats(t *testing.T) {
	h := NewAdminHandler(AdminConfig{
		Catalog:        newCatalog(t),
		RelationalType: "sqlite",
		Branches:       branch.NewDirectory(map[string]string{"CITY": "สาขาตัวเมือง", "MAIN": "สาขาหลัก"}).Entries(),
		RecordBackends: []string{recordstore.RelationalName, recordstore.SheetName},
	})
	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil))

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	rel, ok := data["relational"].(map[string]interface{})
	if !ok || rel["status"] != "connected" || rel["type"] != "sqlite" {
		t.Errorf("relational = %v", data["relational"])
	}
	if rel["products"] != 1.0 {
		t.Errorf("products = %v, want 1", rel["products"])
	}

	branches, ok := data["branches"].([]interface{})
	if !ok || len(branches) != 2 {
		t.Fatalf("branches = %v", data["branches"])
	}
	first := branches[0].(map[string]interface{})
	if first["code"] != "CITY" || first["name"] != "สาขาตัวเมือง" {
		t.Errorf("branches[0] = %v, want CITY first", first)
	}
}
