package storage

import (
	"errors"
	"fmt"

	"dslf/internal/domain/models"
	"dslf/internal/repository"
)

// ErrInvalidTable - entries cannot form a table because of a duplicate or reserved path.
var ErrInvalidTable = errors.New("invalid route table")

// RouteTable - immutable mapping from request path to route entry.
// It is never written after NewRouteTable returns, so concurrent reads need no locking.
type RouteTable struct {
	routes  map[string]models.RouteEntry
	ordered []models.RouteEntry
}

// NewRouteTable builds a table from validated entries.
func NewRouteTable(entries []models.RouteEntry) (*RouteTable, error) {
	t := &RouteTable{
		routes:  make(map[string]models.RouteEntry, len(entries)),
		ordered: make([]models.RouteEntry, 0, len(entries)),
	}

	for _, e := range entries {
		if e.Path == repository.HealthPath {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidTable, repository.ErrReservedPath, e.Path)
		}
		if _, exists := t.routes[e.Path]; exists {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidTable, repository.ErrDuplicatePath, e.Path)
		}
		t.routes[e.Path] = e
		t.ordered = append(t.ordered, e)
	}

	return t, nil
}

// Lookup returns the entry for path.
func (t *RouteTable) Lookup(path string) (models.RouteEntry, bool) {
	e, ok := t.routes[path]
	return e, ok
}

// Entries returns a copy of the entries in configuration order.
func (t *RouteTable) Entries() []models.RouteEntry {
	out := make([]models.RouteEntry, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	return len(t.ordered)
}
