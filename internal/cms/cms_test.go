package cms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webportal/cms-backend/config"
	"github.com/webportal/cms-backend/internal/storage"
)

// stubStore records every call and delegates to optional func fields so each
// test wires only the behavior it needs.
type stubStore struct {
	calls       int
	collections []string

	findFn   func(collection, id string) (storage.Record, error)
	listFn   func(collection string, filter storage.ListFilter) ([]storage.Record, error)
	createFn func(collection string, fields storage.Record) (storage.Record, error)
	updateFn func(collection, id string, fields storage.Record) (storage.Record, error)
	deleteFn func(collection, id string) error
}

func (s *stubStore) FindByID(_ context.Context, collection, id string) (storage.Record, error) {
	s.calls++
	s.collections = append(s.collections, collection)
	if s.findFn == nil {
		return storage.Record{"id": id}, nil
	}
	return s.findFn(collection, id)
}

func (s *stubStore) List(_ context.Context, collection string, filter storage.ListFilter) ([]storage.Record, error) {
	s.calls++
	s.collections = append(s.collections, collection)
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(collection, filter)
}

func (s *stubStore) Create(_ context.Context, collection string, fields storage.Record) (storage.Record, error) {
	s.calls++
	s.collections = append(s.collections, collection)
	if s.createFn == nil {
		return fields, nil
	}
	return s.createFn(collection, fields)
}

func (s *stubStore) UpdateByID(_ context.Context, collection, id string, fields storage.Record) (storage.Record, error) {
	s.calls++
	s.collections = append(s.collections, collection)
	if s.updateFn == nil {
		return fields, nil
	}
	return s.updateFn(collection, id, fields)
}

func (s *stubStore) DeleteByID(_ context.Context, collection, id string) error {
	s.calls++
	s.collections = append(s.collections, collection)
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(collection, id)
}

func testCollections() config.Collections {
	cols := config.Collections{}
	cols.Resolve("test")
	return cols
}

func newTestManager(relational, documents, admin *stubStore) *Manager {
	return New(relational, documents, admin, testCollections())
}

func TestCreateMissingFieldNeverReachesStore(t *testing.T) {
	relational := &stubStore{}
	m := newTestManager(relational, &stubStore{}, &stubStore{})

	_, err := m.Create(context.Background(), Banners, storage.Record{"imageUrl": "https://x/y.png"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRecord))
	assert.Equal(t, 0, relational.calls)
}

func TestUpdateRequiresID(t *testing.T) {
	documents := &stubStore{}
	m := newTestManager(&stubStore{}, documents, &stubStore{})

	_, err := m.Update(context.Background(), Events, "", storage.Record{"title": "x"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRecord))

	_, err = m.Update(context.Background(), Events, "ev1", storage.Record{}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRecord))
	assert.Equal(t, 0, documents.calls)
}

func TestDeleteRequiresID(t *testing.T) {
	admin := &stubStore{}
	m := newTestManager(&stubStore{}, &stubStore{}, admin)

	err := m.Delete(context.Background(), Logos, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRecord))
	assert.Equal(t, 0, admin.calls)
}

func TestClientSuppliedTimestampsAreStripped(t *testing.T) {
	var createFields, updateFields storage.Record
	admin := &stubStore{
		createFn: func(_ string, fields storage.Record) (storage.Record, error) {
			createFields = fields
			return fields, nil
		},
		updateFn: func(_, _ string, fields storage.Record) (storage.Record, error) {
			updateFields = fields
			return fields, nil
		},
	}
	m := newTestManager(&stubStore{}, &stubStore{}, admin)
	ctx := context.Background()

	_, err := m.Create(ctx, Logos, storage.Record{
		"name":      "Acme",
		"logoUrl":   "https://x/a.png",
		"createdAt": int64(12345),
		"updatedAt": int64(12345),
	}, "")
	require.NoError(t, err)
	assert.NotContains(t, createFields, "createdAt")
	assert.NotContains(t, createFields, "updatedAt")

	_, err = m.Update(ctx, Logos, "l1", storage.Record{
		"name":      "Acme Corp",
		"updatedAt": int64(12345),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updateFields["name"])
	assert.NotContains(t, updateFields, "updatedAt")
}

func TestUnknownEntity(t *testing.T) {
	m := newTestManager(&stubStore{}, &stubStore{}, &stubStore{})

	_, err := m.ByID(context.Background(), Entity("widgets"), "w1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRecord))
}

func TestCollectionOverride(t *testing.T) {
	relational := &stubStore{}
	admin := &stubStore{}
	m := newTestManager(relational, &stubStore{}, admin)

	_, err := m.ByID(context.Background(), Logos, "l1", "logos-staging")
	require.NoError(t, err)
	require.Len(t, admin.collections, 1)
	assert.Equal(t, "logos-staging", admin.collections[0])

	// relational tables are never remappable
	_, err = m.ByID(context.Background(), Banners, "b1", "other")
	require.NoError(t, err)
	require.Len(t, relational.collections, 1)
	assert.Equal(t, "banners", relational.collections[0])
}

func TestStoreFAQListingCachedPerStore(t *testing.T) {
	admin := &stubStore{
		listFn: func(_ string, filter storage.ListFilter) ([]storage.Record, error) {
			return []storage.Record{{"id": "f1", "storeId": filter.StoreID}}, nil
		},
	}
	m := newTestManager(&stubStore{}, &stubStore{}, admin)
	ctx := context.Background()

	first, err := m.List(ctx, StoreFAQs, storage.ListFilter{StoreID: "store-1"}, "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, admin.calls)

	// repeat read for the same store is a cache hit
	_, err = m.List(ctx, StoreFAQs, storage.ListFilter{StoreID: "store-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, admin.calls)

	// a different store evicts the slot
	_, err = m.List(ctx, StoreFAQs, storage.ListFilter{StoreID: "store-2"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, admin.calls)

	// any mutation clears the cache
	_, err = m.Create(ctx, StoreFAQs, storage.Record{"storeId": "store-2", "question": "q", "answer": "a"}, "")
	require.NoError(t, err)
	_, err = m.List(ctx, StoreFAQs, storage.ListFilter{StoreID: "store-2"}, "")
	require.NoError(t, err)
	assert.Equal(t, 4, admin.calls)
}

func TestSettingsCachedUntilMutation(t *testing.T) {
	documents := &stubStore{
		listFn: func(string, storage.ListFilter) ([]storage.Record, error) {
			return []storage.Record{{"_id": "s1", "email1": "a@b.c"}}, nil
		},
	}
	m := newTestManager(&stubStore{}, documents, &stubStore{})
	ctx := context.Background()

	rec, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", rec["email1"])
	assert.Equal(t, "s1", rec["id"])
	assert.Equal(t, 1, documents.calls)

	_, err = m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, documents.calls)

	// an update clears the cache and the next read fetches again
	_, err = m.Update(ctx, EmailSettings, "s1", storage.Record{"email1": "x@y.z"}, "")
	require.NoError(t, err)
	_, err = m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, documents.calls)
}

func TestSettingsNotFound(t *testing.T) {
	m := newTestManager(&stubStore{}, &stubStore{}, &stubStore{})

	_, err := m.Settings(context.Background())
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestSettingsCacheDroppedOnFailedDelete(t *testing.T) {
	boom := errors.New("connection reset")
	documents := &stubStore{
		listFn: func(string, storage.ListFilter) ([]storage.Record, error) {
			return []storage.Record{{"_id": "s1", "email1": "a@b.c"}}, nil
		},
		deleteFn: func(string, string) error { return boom },
	}
	m := newTestManager(&stubStore{}, documents, &stubStore{})
	ctx := context.Background()

	_, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, documents.calls)

	err = m.Delete(ctx, EmailSettings, "s1", "")
	require.Error(t, err)

	// the failed delete must not leave the old record cached
	_, err = m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, documents.calls)
}

func TestSaveSettingsCreatesThenMerges(t *testing.T) {
	var stored []storage.Record
	documents := &stubStore{
		listFn: func(string, storage.ListFilter) ([]storage.Record, error) {
			return stored, nil
		},
		createFn: func(_ string, fields storage.Record) (storage.Record, error) {
			rec := storage.Record{"_id": "s1"}
			for k, v := range fields {
				rec[k] = v
			}
			stored = []storage.Record{rec}
			return rec, nil
		},
		updateFn: func(_, id string, fields storage.Record) (storage.Record, error) {
			rec := stored[0]
			for k, v := range fields {
				rec[k] = v
			}
			return rec, nil
		},
	}
	m := newTestManager(&stubStore{}, documents, &stubStore{})
	ctx := context.Background()

	_, err := m.SaveSettings(ctx, storage.Record{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRecord))

	created, err := m.SaveSettings(ctx, storage.Record{"email1": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "s1", created["id"])

	merged, err := m.SaveSettings(ctx, storage.Record{"email2": "d@e.f"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", merged["email1"])
	assert.Equal(t, "d@e.f", merged["email2"])
}
