/*
store.go - Persistence interface for drug records

PURPOSE:
  The dose engine does not persist anything itself. Store is the contract the
  surrounding application implements; it hands drugs in and out as *Drug and
  is free to choose any encoding. Implementations load records through
  Import(), the trusted path, exactly like an ORM would.

IMPLEMENTATIONS:
  - store/sqlite: SQLite, fractions stored as text
  - store/memory: In-memory for tests and throwaway runs

CONTRACT:
  - Get returns generic.ErrDrugNotFound (possibly wrapped) for unknown ids
  - Save inserts or replaces by ID
  - Returned drugs are copies; mutating them does not touch the store

SEE ALSO:
  - import.go: Record layout
  - api/handlers.go: Uses Store
*/
package drug

import (
	"context"
	"fmt"
	"time"
)

type Store interface {
	Save(ctx context.Context, d *Drug) error
	Get(ctx context.Context, id DrugID) (*Drug, error)
	List(ctx context.Context) ([]*Drug, error)
	Delete(ctx context.Context, id DrugID) error
}

// DueOn returns the active drugs with a dose due on the date of t, in input
// order. The first drug whose schedule cannot be evaluated aborts the query.
func DueOn(drugs []*Drug, t time.Time) ([]*Drug, error) {
	var due []*Drug
	for _, d := range drugs {
		if !d.Active() {
			continue
		}
		ok, err := d.HasDoseOnDate(t)
		if err != nil {
			return nil, fmt.Errorf("drug %q: %w", d.Name(), err)
		}
		if ok {
			due = append(due, d)
		}
	}
	return due, nil
}
