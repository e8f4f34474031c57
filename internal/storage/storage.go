package storage

import "dslf/internal/domain/models"

// RouteStore is the read-only view of a route table used by request handlers and the validator.
type RouteStore interface {
	// Lookup returns the entry configured for an exact path.
	Lookup(path string) (models.RouteEntry, bool)
	// Entries returns the entries in configuration order.
	Entries() []models.RouteEntry
	// Len returns the number of routes.
	Len() int
}

var _ RouteStore = (*RouteTable)(nil)
