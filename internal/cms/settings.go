package cms

import (
	"context"
	"fmt"

	"github.com/webportal/cms-backend/internal/storage"
)

// singleton returns the lone record of a singleton entity, normalized.
func (m *Manager) singleton(ctx context.Context, entity Entity) (storage.Record, error) {
	b := m.bindings[entity]
	recs, err := b.store.List(ctx, b.collection, storage.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w", entity, storage.ErrNotFound)
	}
	return storage.Normalize(recs[0]), nil
}

// saveSingleton writes a singleton entity, creating the record on the first
// call and merging into the existing one afterwards.
func (m *Manager) saveSingleton(ctx context.Context, entity Entity, fields storage.Record) (storage.Record, error) {
	b := m.bindings[entity]
	for _, name := range b.required {
		if missing(fields, name) {
			return nil, fmt.Errorf("%s is required: %w", name, storage.ErrInvalidRecord)
		}
	}

	existing, err := b.store.List(ctx, b.collection, storage.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}

	m.invalidate(entity)
	stripTimestamps(fields)

	var rec storage.Record
	if len(existing) == 0 {
		rec, err = b.store.Create(ctx, b.collection, fields)
	} else {
		current := storage.Normalize(existing[0])
		id, _ := current["id"].(string)
		rec, err = b.store.UpdateByID(ctx, b.collection, id, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", entity, err)
	}
	return storage.Normalize(rec), nil
}

// Settings returns the singleton email settings record, serving repeat reads
// from the TTL cache between mutations.
func (m *Manager) Settings(ctx context.Context) (storage.Record, error) {
	if cached, ok := m.settings.Get(); ok {
		return cached.(storage.Record), nil
	}

	rec, err := m.singleton(ctx, EmailSettings)
	if err != nil {
		return nil, err
	}

	m.settings.Set(rec)
	return rec, nil
}

// SaveSettings writes the singleton email settings record.
func (m *Manager) SaveSettings(ctx context.Context, fields storage.Record) (storage.Record, error) {
	return m.saveSingleton(ctx, EmailSettings, fields)
}

// Policy returns the singleton privacy policy record. Reads are not cached;
// only the email settings read goes through a cache.
func (m *Manager) Policy(ctx context.Context) (storage.Record, error) {
	return m.singleton(ctx, PrivacyPolicy)
}

// SavePolicy writes the singleton privacy policy record.
func (m *Manager) SavePolicy(ctx context.Context, fields storage.Record) (storage.Record, error) {
	return m.saveSingleton(ctx, PrivacyPolicy, fields)
}
