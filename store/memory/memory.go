// Package memory provides an in-memory drug.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	drugs map[drug.DrugID]*drug.Drug
}

var _ drug.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		drugs: make(map[drug.DrugID]*drug.Drug),
	}
}

// Save stores a copy of d, replacing any drug with the same ID.
func (m *Memory) Save(_ context.Context, d *drug.Drug) error {
	if d.ID == "" {
		return generic.InvalidArgument("id", "", "drug id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drugs[d.ID] = d.Clone()
	return nil
}

// Get returns a copy of the stored drug.
func (m *Memory) Get(_ context.Context, id drug.DrugID) (*drug.Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drugs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrDrugNotFound, id)
	}
	return d.Clone(), nil
}

// List returns copies of all drugs ordered by name, then ID.
func (m *Memory) List(_ context.Context) ([]*drug.Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*drug.Drug, 0, len(m.drugs))
	for _, d := range m.drugs {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id drug.DrugID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drugs[id]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrDrugNotFound, id)
	}
	delete(m.drugs, id)
	return nil
}
