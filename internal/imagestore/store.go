package imagestore

import (
	"context"
	"log"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/outcome"
)

// Store is one upload strategy. folder is the per-branch destination path.
// Implementations never panic or return errors; failures come back as outcome.Failure.
type Store interface {
	Name() string
	Store(ctx context.Context, photo *Photo, filename, folder string) outcome.Result
}

// Chain tries its stores in order and stops at the first success.
type Chain struct {
	stores   []Store
	branches *branch.Directory
	root     string
}

// NewChain builds a chain. Nil entries are skipped.
func NewChain(branches *branch.Directory, rootFolder string, stores ...Store) *Chain {
	c := &Chain{branches: branches, root: rootFolder}
	for _, s := range stores {
		if s != nil {
			c.stores = append(c.stores, s)
		}
	}
	return c
}

// Names lists the configured strategies in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.stores))
	for i, s := range c.stores {
		names[i] = s.Name()
	}
	return names
}

// Folder returns the destination folder for a branch code or name.
func (c *Chain) Folder(branchName string) string {
	return c.branches.FolderPath(c.root, branchName)
}

// Upload returns the first URL any strategy produced and that strategy's name.
// It returns empty strings when photo is nil or every strategy failed.
func (c *Chain) Upload(ctx context.Context, photo *Photo, filename, branchName string) (string, string) {
	if photo == nil || len(photo.Data) == 0 {
		return "", ""
	}

	folder := c.Folder(branchName)
	for _, s := range c.stores {
		result := s.Store(ctx, photo, filename, folder)
		if result.OK() && result.Value != "" {
			log.Printf("[ImageChain] %s stored %s: %s", s.Name(), filename, result.Value)
			return result.Value, s.Name()
		}
		log.Printf("[ImageChain] %s did not store %s: %s", s.Name(), filename, result)
	}

	log.Printf("[ImageChain] All %d strategies failed for %s", len(c.stores), filename)
	return "", ""
}
