package storage

import (
	"context"
)

// Record is a raw stored record as returned by any backend, keyed by field
// name. Backends return their native identifier and timestamp types;
// Normalize converts them to the canonical wire shape.
type Record = map[string]any

// ListFilter narrows List results. A nil field means "no filter".
type ListFilter struct {
	// IsActive filters on the soft-delete/visibility flag.
	IsActive *bool
	// StoreID filters store-scoped records (store FAQs).
	StoreID string
}

// RecordStore is the capability a route handler depends on: CRUD against one
// entity collection/table of a single backend. Implementations must be safe
// for concurrent use and must reuse one underlying client connection.
//
// UpdateByID merges the caller-supplied fields into the stored record and
// re-stamps updatedAt with the current server time. DeleteByID and UpdateByID
// return ErrNotFound when the backend can distinguish a missing target;
// backends that delete blindly (the relational store, document-store deletes)
// return nil for unknown ids. Any operation on an unconfigured client returns
// ErrNotConfigured without attempting a call.
type RecordStore interface {
	FindByID(ctx context.Context, collection, id string) (Record, error)
	List(ctx context.Context, collection string, filter ListFilter) ([]Record, error)
	Create(ctx context.Context, collection string, fields Record) (Record, error)
	UpdateByID(ctx context.Context, collection, id string, fields Record) (Record, error)
	DeleteByID(ctx context.Context, collection, id string) error
}
