// Package recordstore persists stock counts to the relational and spreadsheet backends.
package recordstore

import (
	"context"

	"stockcount-api/internal/model"
	"stockcount-api/internal/outcome"
)

// Store is one record backend. Persist never returns an error; a failed
// write comes back as outcome.Failure.
type Store interface {
	// Name is the key reported in the submission's saved_to map.
	Name() string
	Persist(ctx context.Context, rec model.StockRecord) outcome.Result
}

type unavailable struct {
	name string
}

// Unavailable is a placeholder for a backend that was not configured at
// startup. It always fails, so the backend still appears in saved_to.
func Unavailable(name string) Store {
	return unavailable{name: name}
}

func (u unavailable) Name() string { return u.name }

func (u unavailable) Persist(ctx context.Context, rec model.StockRecord) outcome.Result {
	return outcome.Failuref("%s backend is not configured", u.name)
}
