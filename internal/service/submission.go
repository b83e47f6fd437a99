package service

import (
	"context"
	"log"
	"strings"
	"time"

	"stockcount-api/internal/imagestore"
	"stockcount-api/internal/model"
	"stockcount-api/internal/recordstore"
)

// SubmissionService orchestrates one stock count: photo upload first, then
// every record backend in turn. Nothing runs in parallel.
type SubmissionService struct {
	images *imagestore.Chain
	stores []recordstore.Store
	now    func() time.Time
}

// NewSubmissionService creates a submission service. images may be nil when
// no upload strategy is configured. Nil stores are skipped.
func NewSubmissionService(images *imagestore.Chain, stores ...recordstore.Store) *SubmissionService {
	s := &SubmissionService{images: images, now: time.Now}
	for _, st := range stores {
		if st != nil {
			s.stores = append(s.stores, st)
		}
	}
	return s
}

// WithClock replaces the processing-time source.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// Backends lists the record store names in fan-out order.
func (s *SubmissionService) Backends() []string {
	names := make([]string, len(s.stores))
	for i, st := range s.stores {
		names[i] = st.Name()
	}
	return names
}

func validate(sub *model.StockSubmission) error {
	sub.Barcode = strings.TrimSpace(sub.Barcode)
	sub.Branch = strings.TrimSpace(sub.Branch)

	switch {
	case sub.Barcode == "":
		return &InvalidFieldError{Field: "barcode", Message: "is required"}
	case sub.Branch == "":
		return &InvalidFieldError{Field: "branch", Message: "is required"}
	case sub.Quantity < 0:
		return &InvalidFieldError{Field: "quantity", Message: "must not be negative"}
	}

	if strings.TrimSpace(sub.CounterName) == "" {
		sub.CounterName = "Unknown"
	}
	if strings.TrimSpace(sub.SubmittedBy) == "" {
		sub.SubmittedBy = "Unknown"
	}
	return nil
}

// Submit stores the photo (if any) and fans the record out to every backend.
// The only error returned is ErrInvalidSubmission; backend failures are
// reported through SavedTo and Success.
func (s *SubmissionService) Submit(ctx context.Context, sub model.StockSubmission) (*model.SubmissionResult, error) {
	if err := validate(&sub); err != nil {
		return nil, err
	}

	now := s.now()
	imageURL := s.storePhoto(ctx, sub, now)

	rec := model.StockRecord{
		Barcode:     sub.Barcode,
		ProductName: sub.ProductName,
		Quantity:    sub.Quantity,
		Branch:      sub.Branch,
		CounterName: sub.CounterName,
		ImageURL:    imageURL,
		SubmittedBy: sub.SubmittedBy,
		CountedAt:   now,
	}

	result := &model.SubmissionResult{
		SavedTo:  make(map[string]bool, len(s.stores)),
		ImageURL: imageURL,
	}

	for _, st := range s.stores {
		r := st.Persist(ctx, rec)
		result.SavedTo[st.Name()] = r.OK()
		if r.OK() {
			result.Success = true
			continue
		}
		log.Printf("[SubmissionService] %s failed for barcode=%s branch=%s: %s", st.Name(), rec.Barcode, rec.Branch, r)
	}

	if imageURL != "" {
		result.Success = true
	}

	if !result.Success {
		log.Printf("[SubmissionService] Submission lost: barcode=%s branch=%s qty=%d saved_to=%v",
			rec.Barcode, rec.Branch, rec.Quantity, result.SavedTo)
	}

	return result, nil
}

func (s *SubmissionService) storePhoto(ctx context.Context, sub model.StockSubmission, now time.Time) string {
	if sub.ImageData == "" || s.images == nil {
		return ""
	}

	photo, err := imagestore.DecodePhoto(sub.ImageData)
	if err != nil {
		log.Printf("[SubmissionService] Ignoring photo for %s: %v", sub.Barcode, err)
		return ""
	}

	url, _ := s.images.Upload(ctx, photo, imagestore.Filename(sub.Barcode, now), sub.Branch)
	return url
}
