// Package adminstore is the admin-privileged Firestore record store backing
// FAQs, store FAQs and logos. Collection names are resolved by the caller,
// so a request may target an overridden collection.
package adminstore

import (
	"context"
	"fmt"
	"time"

	firestore "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/webportal/cms-backend/internal/storage"
)

// Store wraps one admin client created at startup. When the client could not
// be initialized (missing project or credentials) the construction error is
// kept and every operation fails fast with storage.ErrNotConfigured instead
// of attempting the call.
type Store struct {
	client  *firestore.Client
	initErr error
}

var _ storage.RecordStore = (*Store)(nil)

// New builds the admin client. It never fails hard: a store with a recorded
// initialization error still satisfies RecordStore so routes degrade to 500s
// rather than the process refusing to boot.
func New(ctx context.Context, projectID, credentialsFile string) *Store {
	if projectID == "" {
		return &Store{initErr: fmt.Errorf("firestore project id is empty: %w", storage.ErrNotConfigured)}
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return &Store{initErr: fmt.Errorf("firestore client: %v: %w", err, storage.ErrNotConfigured)}
	}

	return &Store{client: client}
}

func (s *Store) ready() error {
	if s.initErr != nil {
		return s.initErr
	}
	if s.client == nil {
		return storage.ErrNotConfigured
	}
	return nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// record attaches the document id to the snapshot data so the normalizer can
// surface it as the public id.
func record(doc *firestore.DocumentSnapshot) storage.Record {
	data := doc.Data()
	if data == nil {
		data = map[string]any{}
	}
	data["id"] = doc.Ref.ID
	return data
}

func (s *Store) FindByID(ctx context.Context, collection, id string) (storage.Record, error) {
	const op = "adminstore/FindByID"

	if err := s.ready(); err != nil {
		return nil, err
	}

	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return record(doc), nil
}

func (s *Store) List(ctx context.Context, collection string, filter storage.ListFilter) ([]storage.Record, error) {
	const op = "adminstore/List"

	if err := s.ready(); err != nil {
		return nil, err
	}

	query := s.client.Collection(collection).Query
	if filter.IsActive != nil {
		query = query.Where("isActive", "==", *filter.IsActive)
	}
	if filter.StoreID != "" {
		query = query.Where("storeId", "==", filter.StoreID)
	}
	query = query.OrderBy("order", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []storage.Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, record(doc))
	}

	return records, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields storage.Record) (storage.Record, error) {
	const op = "adminstore/Create"

	if err := s.ready(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	data := map[string]any{}
	for name, value := range fields {
		data[name] = value
	}
	data["createdAt"] = now
	data["updatedAt"] = now

	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data["id"] = ref.ID
	return data, nil
}

// UpdateByID merges the supplied fields into the document and re-stamps
// updatedAt. Firestore reports a missing target, so this maps to
// storage.ErrNotFound.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, fields storage.Record) (storage.Record, error) {
	const op = "adminstore/UpdateByID"

	if err := s.ready(); err != nil {
		return nil, err
	}

	updates := make([]firestore.Update, 0, len(fields)+1)
	for name, value := range fields {
		updates = append(updates, firestore.Update{Path: name, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now().UTC()})

	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: re-read: %w", op, err)
	}

	return record(doc), nil
}

// DeleteByID deletes blindly: Firestore document deletes succeed whether or
// not the target exists, and the routes built on this store report success
// for unknown ids.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	const op = "adminstore/DeleteByID"

	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
