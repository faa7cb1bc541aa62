package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webportal/cms-backend/config"
	"github.com/webportal/cms-backend/internal/cms"
	"github.com/webportal/cms-backend/internal/media"
	"github.com/webportal/cms-backend/internal/storage"
)

// stubStore delegates to optional func fields and counts calls, so a test can
// assert that a rejected request never reached the backend.
type stubStore struct {
	calls int

	findFn   func(collection, id string) (storage.Record, error)
	listFn   func(collection string, filter storage.ListFilter) ([]storage.Record, error)
	createFn func(collection string, fields storage.Record) (storage.Record, error)
	updateFn func(collection, id string, fields storage.Record) (storage.Record, error)
	deleteFn func(collection, id string) error
}

func (s *stubStore) FindByID(_ context.Context, collection, id string) (storage.Record, error) {
	s.calls++
	if s.findFn == nil {
		return storage.Record{"id": id}, nil
	}
	return s.findFn(collection, id)
}

func (s *stubStore) List(_ context.Context, collection string, filter storage.ListFilter) ([]storage.Record, error) {
	s.calls++
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(collection, filter)
}

func (s *stubStore) Create(_ context.Context, collection string, fields storage.Record) (storage.Record, error) {
	s.calls++
	if s.createFn == nil {
		return fields, nil
	}
	return s.createFn(collection, fields)
}

func (s *stubStore) UpdateByID(_ context.Context, collection, id string, fields storage.Record) (storage.Record, error) {
	s.calls++
	if s.updateFn == nil {
		return fields, nil
	}
	return s.updateFn(collection, id, fields)
}

func (s *stubStore) DeleteByID(_ context.Context, collection, id string) error {
	s.calls++
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(collection, id)
}

func newTestServer(t *testing.T, relational, documents, admin *stubStore) *echo.Echo {
	t.Helper()

	cols := config.Collections{}
	cols.Resolve("test")
	manager := cms.New(relational, documents, admin, cols)

	uploads, err := media.New(context.Background(), media.Config{})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(manager, uploads, logger)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestDeleteWithoutIDNeverReachesStore(t *testing.T) {
	documents := &stubStore{}
	e := newTestServer(t, &stubStore{}, documents, &stubStore{})

	rec := doJSON(e, http.MethodPost, "/api/v1/events/delete", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "id is required")
	assert.Equal(t, 0, documents.calls)
}

func TestDeleteNotFoundSplitsByBackend(t *testing.T) {
	documents := &stubStore{
		deleteFn: func(string, string) error { return storage.ErrNotFound },
	}
	// relational deletes are blind: unknown id still succeeds
	e := newTestServer(t, &stubStore{}, documents, &stubStore{})

	rec := doJSON(e, http.MethodPost, "/api/v1/regions/delete", `{"id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)

	rec = doJSON(e, http.MethodPost, "/api/v1/banners/delete", `{"id":"missing"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestCreateMissingRequiredField(t *testing.T) {
	relational := &stubStore{}
	e := newTestServer(t, relational, &stubStore{}, &stubStore{})

	rec := doJSON(e, http.MethodPost, "/api/v1/categories/create", `{"name":"Food"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Error, "logoUrl is required")
	assert.Equal(t, 0, relational.calls)
}

func TestUpdateReturnsRefreshedRecord(t *testing.T) {
	admin := &stubStore{
		updateFn: func(_, id string, fields storage.Record) (storage.Record, error) {
			rec := storage.Record{"id": id, "name": "OldName", "logoUrl": "https://x/l.png"}
			for k, v := range fields {
				rec[k] = v
			}
			return rec, nil
		},
	}
	e := newTestServer(t, &stubStore{}, &stubStore{}, admin)

	rec := doJSON(e, http.MethodPost, "/api/v1/logos/update",
		`{"id":"logo1","updates":{"name":"NewName"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NewName", data["name"])
	assert.Equal(t, "https://x/l.png", data["logoUrl"])
}

func TestListPassesFilters(t *testing.T) {
	var seen storage.ListFilter
	admin := &stubStore{
		listFn: func(_ string, filter storage.ListFilter) ([]storage.Record, error) {
			seen = filter
			return []storage.Record{}, nil
		},
	}
	e := newTestServer(t, &stubStore{}, &stubStore{}, admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/faqs?isActive=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen.IsActive)
	assert.True(t, *seen.IsActive)

	rec = doJSON(e, http.MethodGet, "/api/v1/store-faqs?storeId=store-9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "store-9", seen.StoreID)
}

func TestListRejectsMalformedIsActive(t *testing.T) {
	admin := &stubStore{}
	e := newTestServer(t, &stubStore{}, &stubStore{}, admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/faqs?isActive=banana", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Error, "isActive must be a boolean")
	assert.Equal(t, 0, admin.calls)
}

func TestMalformedBodyIs400(t *testing.T) {
	relational := &stubStore{}
	e := newTestServer(t, relational, &stubStore{}, &stubStore{})

	rec := doJSON(e, http.MethodPost, "/api/v1/banners/update", `{"id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Error, "invalid request body")
	assert.Equal(t, 0, relational.calls)
}

func TestBackendFailureIs500WithVerbatimMessage(t *testing.T) {
	documents := &stubStore{
		listFn: func(string, storage.ListFilter) ([]storage.Record, error) {
			return nil, storage.ErrNotConfigured
		},
	}
	e := newTestServer(t, &stubStore{}, documents, &stubStore{})

	rec := doJSON(e, http.MethodGet, "/api/v1/events", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "client not configured")
}

func TestEmailSettingsSingleton(t *testing.T) {
	documents := &stubStore{
		listFn: func(string, storage.ListFilter) ([]storage.Record, error) {
			return []storage.Record{{"_id": "s1", "email1": "a@b.c"}}, nil
		},
	}
	e := newTestServer(t, &stubStore{}, documents, &stubStore{})

	rec := doJSON(e, http.MethodGet, "/api/v1/email-settings", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", data["id"])
	assert.Equal(t, "a@b.c", data["email1"])

	// cached: the second read does not hit the store
	_ = doJSON(e, http.MethodGet, "/api/v1/email-settings", "")
	assert.Equal(t, 1, documents.calls)
}

func TestPrivacyPolicySingleton(t *testing.T) {
	var stored []storage.Record
	documents := &stubStore{
		listFn: func(string, storage.ListFilter) ([]storage.Record, error) {
			return stored, nil
		},
		createFn: func(_ string, fields storage.Record) (storage.Record, error) {
			rec := storage.Record{"_id": "p1"}
			for k, v := range fields {
				rec[k] = v
			}
			stored = []storage.Record{rec}
			return rec, nil
		},
	}
	e := newTestServer(t, &stubStore{}, documents, &stubStore{})

	rec := doJSON(e, http.MethodGet, "/api/v1/privacy-policy", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/privacy-policy", `{"title":"Privacy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error, "content is required")

	rec = doJSON(e, http.MethodPost, "/api/v1/privacy-policy",
		`{"title":"Privacy","content":"We store very little."}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/privacy-policy", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", data["id"])
	assert.Equal(t, "Privacy", data["title"])
}

func TestUploadUnconfigured(t *testing.T) {
	e := newTestServer(t, &stubStore{}, &stubStore{}, &stubStore{})

	rec := doJSON(e, http.MethodPost, "/api/v1/uploads",
		`{"kind":"banners","contentType":"image/png"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, &stubStore{}, &stubStore{}, &stubStore{})

	rec := doJSON(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
