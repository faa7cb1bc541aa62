package cms

import (
	"context"
	"fmt"

	"github.com/webportal/cms-backend/internal/storage"
)

// resolve picks the binding for an entity and applies a per-request collection
// override where the binding allows one.
func (m *Manager) resolve(entity Entity, override string) (binding, error) {
	b, ok := m.bindings[entity]
	if !ok {
		return binding{}, fmt.Errorf("unknown entity %q: %w", entity, storage.ErrInvalidRecord)
	}
	if override != "" && b.overridable {
		b.collection = override
	}
	return b, nil
}

// List returns normalized records for an entity. Store FAQ listings filtered
// by storeId are served from the keyed cache when the same store was listed
// since the last mutation.
func (m *Manager) List(ctx context.Context, entity Entity, filter storage.ListFilter, collection string) ([]storage.Record, error) {
	b, err := m.resolve(entity, collection)
	if err != nil {
		return nil, err
	}

	cacheable := entity == StoreFAQs && filter.StoreID != "" && collection == ""
	if cacheable {
		if cached, ok := m.storeFAQs.Get(filter.StoreID); ok {
			return cached.([]storage.Record), nil
		}
	}

	recs, err := b.store.List(ctx, b.collection, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}

	result := storage.NormalizeAll(recs)
	if cacheable {
		m.storeFAQs.Set(filter.StoreID, result)
	}
	return result, nil
}

// ByID returns one normalized record.
func (m *Manager) ByID(ctx context.Context, entity Entity, id, collection string) (storage.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required: %w", storage.ErrInvalidRecord)
	}
	b, err := m.resolve(entity, collection)
	if err != nil {
		return nil, err
	}

	rec, err := b.store.FindByID(ctx, b.collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}
	return storage.Normalize(rec), nil
}

// Create validates the required fields for the entity, then inserts. The
// validation runs before any store call so a malformed body never reaches a
// backend.
func (m *Manager) Create(ctx context.Context, entity Entity, fields storage.Record, collection string) (storage.Record, error) {
	b, err := m.resolve(entity, collection)
	if err != nil {
		return nil, err
	}
	for _, name := range b.required {
		if missing(fields, name) {
			return nil, fmt.Errorf("%s is required: %w", name, storage.ErrInvalidRecord)
		}
	}
	stripTimestamps(fields)

	rec, err := b.store.Create(ctx, b.collection, fields)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", entity, err)
	}

	m.invalidate(entity)
	return storage.Normalize(rec), nil
}

// Update merges fields into the stored record and returns the refreshed,
// normalized state.
func (m *Manager) Update(ctx context.Context, entity Entity, id string, fields storage.Record, collection string) (storage.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required: %w", storage.ErrInvalidRecord)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("updates are required: %w", storage.ErrInvalidRecord)
	}
	b, err := m.resolve(entity, collection)
	if err != nil {
		return nil, err
	}
	stripTimestamps(fields)

	rec, err := b.store.UpdateByID(ctx, b.collection, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", entity, err)
	}

	m.invalidate(entity)
	return storage.Normalize(rec), nil
}

// Delete removes a record. Whether an unknown id is an error depends on the
// owning backend: the document store reports ErrNotFound, the relational and
// admin stores delete blindly. The caches are dropped even when the delete
// fails, so a failed delete can never leave a stale record cached.
func (m *Manager) Delete(ctx context.Context, entity Entity, id, collection string) error {
	if id == "" {
		return fmt.Errorf("id is required: %w", storage.ErrInvalidRecord)
	}
	b, err := m.resolve(entity, collection)
	if err != nil {
		return err
	}

	m.invalidate(entity)

	if err := b.store.DeleteByID(ctx, b.collection, id); err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	return nil
}

// invalidate drops whichever cache the entity feeds.
func (m *Manager) invalidate(entity Entity) {
	switch entity {
	case EmailSettings:
		m.settings.Clear()
	case StoreFAQs:
		m.storeFAQs.Clear()
	}
}

// stripTimestamps drops the store-managed fields from a caller payload.
// createdAt and updatedAt are stamped by the backends and never
// client-supplied; a leftover client value would collide with the server
// stamp on the admin store.
func stripTimestamps(fields storage.Record) {
	delete(fields, "createdAt")
	delete(fields, "updatedAt")
}

func missing(fields storage.Record, name string) bool {
	v, ok := fields[name]
	if !ok || v == nil {
		return true
	}
	if s, isString := v.(string); isString && s == "" {
		return true
	}
	return false
}
