package imagestore

import (
	"context"
	"fmt"

	"stockcount-api/internal/outcome"
)

// DriveClient is the delegated-authorization cloud storage capability.
type DriveClient interface {
	IsAuthorized(ctx context.Context) bool
	ResolveOrCreateFolder(ctx context.Context, path string) (string, error)
	UploadImage(ctx context.Context, data []byte, filename, mimeType, folderID string) (string, error)
}

// DriveStore uploads through an authorized Drive client.
type DriveStore struct {
	client DriveClient
}

// NewDriveStore creates a store over an authorized Drive client.
func NewDriveStore(client DriveClient) *DriveStore {
	return &DriveStore{client: client}
}

// Name implements Store.
func (s *DriveStore) Name() string { return "google_drive" }

// Store implements Store.
func (s *DriveStore) Store(ctx context.Context, photo *Photo, filename, folder string) outcome.Result {
	if !s.client.IsAuthorized(ctx) {
		return outcome.Failuref("drive not authorized")
	}

	folderID, err := s.client.ResolveOrCreateFolder(ctx, folder)
	if err != nil {
		return outcome.Failure(fmt.Errorf("resolve folder %q: %w", folder, err))
	}

	link, err := s.client.UploadImage(ctx, photo.Data, filename, MimeTypeFor(filename), folderID)
	if err != nil {
		return outcome.Failure(err)
	}
	if link == "" {
		return outcome.Failuref("upload returned no link")
	}
	return outcome.Success(link)
}

var _ Store = (*DriveStore)(nil)
