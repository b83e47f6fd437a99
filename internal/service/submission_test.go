package service

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/imagestore"
	"stockcount-api/internal/model"
	"stockcount-api/internal/outcome"
	"stockcount-api/internal/recordstore"
	"stockcount-api/internal/repository"
)

var branches = branch.NewDirectory(map[string]string{
	"MAIN": "สาขาหลัก",
	"CITY": "สาขาตัวเมือง",
})

var fixedNow = time.Date(2026, 10, 18, 9, 15, 30, 0, time.UTC)

type fakeRecordStore struct {
	name    string
	result  outcome.Result
	records []model.StockRecord
}

func (f *fakeRecordStore) Name() string { return f.name }

func (f *fakeRecordStore) Persist(ctx context.Context, rec model.StockRecord) outcome.Result {
	f.records = append(f.records, rec)
	return f.result
}

type fakeImageStore struct {
	name   string
	result outcome.Result
	calls  int
	folder string
}

func (f *fakeImageStore) Name() string { return f.name }

func (f *fakeImageStore) Store(ctx context.Context, photo *imagestore.Photo, filename, folder string) outcome.Result {
	f.calls++
	f.folder = folder
	return f.result
}

type unauthorizedDrive struct {
	uploads int
}

func (d *unauthorizedDrive) IsAuthorized(ctx context.Context) bool { return false }

func (d *unauthorizedDrive) ResolveOrCreateFolder(ctx context.Context, path string) (string, error) {
	return "", errors.New("not authorized")
}

func (d *unauthorizedDrive) UploadImage(ctx context.Context, data []byte, filename, mimeType, folderID string) (string, error) {
	d.uploads++
	return "", errors.New("not authorized")
}

func submission() model.StockSubmission {
	return model.StockSubmission{
		Barcode:     "1234567890123",
		ProductName: "Green Tea",
		Quantity:    15,
		Branch:      "CITY",
		SubmittedBy: "staff",
	}
}

func photoData() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0})
}

func TestSubmitAnyBackendSucceeds(t *testing.T) {
	rel := &fakeRecordStore{name: recordstore.RelationalName, result: outcome.Success("row-1")}
	sheet := &fakeRecordStore{name: recordstore.SheetName, result: outcome.Failuref("quota")}
	svc := NewSubmissionService(nil, rel, sheet).WithClock(func() time.Time { return fixedNow })

	result, err := svc.Submit(context.Background(), submission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.Success {
		t.Error("Success = false, want true with one backend saved")
	}
	if !result.SavedTo[recordstore.RelationalName] || result.SavedTo[recordstore.SheetName] {
		t.Errorf("SavedTo = %v", result.SavedTo)
	}

	rec := rel.records[0]
	if rec.CounterName != "Unknown" || !rec.CountedAt.Equal(fixedNow) || rec.ImageURL != "" {
		t.Errorf("record = %+v", rec)
	}
	if len(sheet.records) != 1 {
		t.Error("sheet backend must be attempted even after relational success")
	}
}

func TestSubmitWithoutPhotoSkipsChain(t *testing.T) {
	first := &fakeImageStore{name: "first", result: outcome.Success("https://img")}
	chain := imagestore.NewChain(branches, "Root", first)
	rel := &fakeRecordStore{name: recordstore.RelationalName, result: outcome.Success("row-1")}

	for _, data := range []string{"", "data:image/jpeg;base64,"} {
		sub := submission()
		sub.ImageData = data
		result, err := NewSubmissionService(chain, rel).Submit(context.Background(), sub)
		if err != nil || !result.Success || result.ImageURL != "" {
			t.Errorf("Submit(image=%q) = %+v, %v", data, result, err)
		}
	}
	if first.calls != 0 {
		t.Errorf("image strategy called %d times without a photo", first.calls)
	}
	if rel.records[len(rel.records)-1].ImageURL != "" {
		t.Error("record should carry an empty image_url")
	}
}

func TestSubmitImageChainStopsAtFirstURL(t *testing.T) {
	remote := &fakeImageStore{name: "apps_script", result: outcome.Success("https://drive.google.com/file/d/abc/view")}
	drive := &unauthorizedDrive{}
	local := &fakeImageStore{name: "local", result: outcome.Success("local://uploads/x.jpg")}
	chain := imagestore.NewChain(branches, "Check Stock Project", remote, imagestore.NewDriveStore(drive), local)
	rel := &fakeRecordStore{name: recordstore.RelationalName, result: outcome.Success("row-1")}

	sub := submission()
	sub.ImageData = photoData()
	result, err := NewSubmissionService(chain, rel).Submit(context.Background(), sub)
	if err != nil {
		t.Fatal(err)
	}

	if result.ImageURL != "https://drive.google.com/file/d/abc/view" {
		t.Errorf("ImageURL = %q", result.ImageURL)
	}
	if drive.uploads != 0 || local.calls != 0 {
		t.Errorf("later strategies invoked: drive=%d local=%d", drive.uploads, local.calls)
	}
	if remote.folder != "Check Stock Project/สาขาตัวเมือง" {
		t.Errorf("folder = %q", remote.folder)
	}
	if rel.records[0].ImageURL != result.ImageURL {
		t.Error("record should carry the uploaded URL")
	}
}

func TestSubmitImageChainFallsBackToLocal(t *testing.T) {
	remote := &fakeImageStore{name: "apps_script", result: outcome.Failuref("HTTP 500")}
	drive := &unauthorizedDrive{}
	dir := t.TempDir()
	chain := imagestore.NewChain(branches, "Root", remote, imagestore.NewDriveStore(drive), imagestore.NewLocalStore(dir))

	sub := submission()
	sub.ImageData = photoData()
	svc := NewSubmissionService(chain, recordstore.Unavailable(recordstore.RelationalName)).
		WithClock(func() time.Time { return fixedNow })

	result, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatal(err)
	}

	want := imagestore.LocalScheme + filepath.ToSlash(filepath.Join(dir, "stock_1234567890123_20261018_091530.jpg"))
	if result.ImageURL != want {
		t.Errorf("ImageURL = %q, want %q", result.ImageURL, want)
	}
	if drive.uploads != 0 {
		t.Error("unauthorized drive must not upload")
	}
	if !result.Success {
		t.Error("a stored photo alone makes the submission a success")
	}
}

func TestSubmitBackendsFailIndependently(t *testing.T) {
	repo := newSQLiteCatalog(t)
	rel := recordstore.NewRelationalStore(repo, branches, time.Second)
	sheet := &fakeRecordStore{name: recordstore.SheetName, result: outcome.Success("stock-sheet")}

	sub := submission()
	sub.Barcode = "0000000000000"
	result, err := NewSubmissionService(nil, rel, sheet).Submit(context.Background(), sub)
	if err != nil {
		t.Fatal(err)
	}

	if !result.Success {
		t.Error("Success = false, want true via sheet")
	}
	if result.SavedTo[recordstore.RelationalName] || !result.SavedTo[recordstore.SheetName] {
		t.Errorf("SavedTo = %v, want relational false and sheet true", result.SavedTo)
	}
}

func TestSubmitCreatesMissingBranch(t *testing.T) {
	repo := newSQLiteCatalog(t)
	rel := recordstore.NewRelationalStore(repo, branches, time.Second)

	result, err := NewSubmissionService(nil, rel, recordstore.Unavailable(recordstore.SheetName)).
		Submit(context.Background(), submission())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{recordstore.RelationalName: true, recordstore.SheetName: false}
	for k, v := range want {
		if result.SavedTo[k] != v {
			t.Errorf("SavedTo[%s] = %v, want %v", k, result.SavedTo[k], v)
		}
	}
	if br, _ := repo.GetBranchByCode(context.Background(), "CITY"); br == nil || br.Name != "สาขาตัวเมือง" {
		t.Errorf("branch = %+v, want auto-created CITY", br)
	}
}

func TestSubmitTotalFailure(t *testing.T) {
	svc := NewSubmissionService(nil,
		&fakeRecordStore{name: recordstore.RelationalName, result: outcome.Failuref("down")},
		&fakeRecordStore{name: recordstore.SheetName, result: outcome.Failuref("down")},
	)

	result, err := svc.Submit(context.Background(), submission())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("Success = true with every backend failed and no photo")
	}
	if len(result.SavedTo) != 2 {
		t.Errorf("SavedTo = %v, want both backends reported", result.SavedTo)
	}
}

func TestSubmitValidation(t *testing.T) {
	rel := &fakeRecordStore{name: recordstore.RelationalName, result: outcome.Success("row")}
	svc := NewSubmissionService(nil, rel)

	cases := map[string]func(*model.StockSubmission){
		"missing barcode":   func(s *model.StockSubmission) { s.Barcode = "  " },
		"missing branch":    func(s *model.StockSubmission) { s.Branch = "" },
		"negative quantity": func(s *model.StockSubmission) { s.Quantity = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			sub := submission()
			mutate(&sub)
			_, err := svc.Submit(context.Background(), sub)
			if !errors.Is(err, ErrInvalidSubmission) {
				t.Errorf("Submit() error = %v, want ErrInvalidSubmission", err)
			}
		})
	}
	if len(rel.records) != 0 {
		t.Error("invalid submissions must not reach a backend")
	}
}

func TestSubmitIgnoresUndecodablePhoto(t *testing.T) {
	first := &fakeImageStore{name: "first", result: outcome.Success("https://img")}
	rel := &fakeRecordStore{name: recordstore.RelationalName, result: outcome.Success("row")}

	sub := submission()
	sub.ImageData = "data:image/jpeg;base64,%%%not-base64%%%"
	result, err := NewSubmissionService(imagestore.NewChain(branches, "", first), rel).Submit(context.Background(), sub)
	if err != nil || !result.Success || result.ImageURL != "" {
		t.Errorf("Submit() = %+v, %v", result, err)
	}
	if first.calls != 0 {
		t.Error("undecodable photo should not reach the chain")
	}
}

func newSQLiteCatalog(t *testing.T) *repository.SQLCatalogRepository {
	t.Helper()
	repo, err := repository.NewSQLiteCatalogRepository(filepath.Join(t.TempDir(), "stock.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCatalogRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	err = repo.AddProduct(context.Background(), &model.Product{
		Barcode:      "1234567890123",
		Name:         "Green Tea",
		SKU:          "GT-01",
		Category:     "Drinks",
		SellingPrice: 25,
	})
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestBackends(t *testing.T) {
	svc := NewSubmissionService(nil, recordstore.Unavailable("a"), nil, recordstore.Unavailable("b"))
	if got := strings.Join(svc.Backends(), ","); got != "a,b" {
		t.Errorf("Backends() = %q", got)
	}
}
