// Package docstore is the MongoDB record store backing events, regions,
// the privacy policy and email settings.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/webportal/cms-backend/internal/storage"
)

// connectTimeout bounds the one-time dial and ping. The dial never runs on a
// caller's context: a canceled request must not decide the fate of the
// shared client.
const connectTimeout = 10 * time.Second

// Store lazily connects a single mongo client on first use and reuses it for
// every subsequent call. Only a successful connection is kept; a failed
// attempt is reported to its caller and retried by the next one. With no URL
// configured every operation fails fast with storage.ErrNotConfigured.
type Store struct {
	url      string
	database string

	mu sync.Mutex
	db *mongodriver.Database
}

var _ storage.RecordStore = (*Store)(nil)

func New(url, database string) *Store {
	if database == "" {
		database = "portal"
	}
	return &Store{url: url, database: database}
}

func (s *Store) connect() (*mongodriver.Database, error) {
	if s.url == "" {
		return nil, storage.ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongodriver.Connect(dialCtx, options.Client().ApplyURI(s.url))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(dialCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s.db = client.Database(s.database)
	return s.db, nil
}

// Close disconnects the client if a connection was ever established.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Client().Disconnect(ctx)
}

// objectID parses a caller-supplied id. A malformed hex string is treated as
// "no such record", never as a backend failure.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, storage.ErrNotFound
	}
	return oid, nil
}

func (s *Store) FindByID(ctx context.Context, collection, id string) (storage.Record, error) {
	const op = "docstore/FindByID"

	db, err := s.connect()
	if err != nil {
		return nil, err
	}

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return storage.Record(doc), nil
}

func (s *Store) List(ctx context.Context, collection string, filter storage.ListFilter) ([]storage.Record, error) {
	const op = "docstore/List"

	db, err := s.connect()
	if err != nil {
		return nil, err
	}

	query := bson.D{}
	if filter.IsActive != nil {
		query = append(query, bson.E{Key: "isActive", Value: *filter.IsActive})
	}
	if filter.StoreID != "" {
		query = append(query, bson.E{Key: "storeId", Value: filter.StoreID})
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})

	cur, err := db.Collection(collection).Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var records []storage.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		records = append(records, storage.Record(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return records, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields storage.Record) (storage.Record, error) {
	const op = "docstore/Create"

	db, err := s.connect()
	if err != nil {
		return nil, err
	}

	// Mongo DateTime keeps millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := bson.M{}
	for name, value := range fields {
		doc[name] = value
	}
	doc["createdAt"] = now
	doc["updatedAt"] = now

	res, err := db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	doc["_id"] = oid

	return storage.Record(doc), nil
}

// UpdateByID merges the supplied fields and re-stamps updatedAt server-side.
// Returns storage.ErrNotFound when the document does not exist.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, fields storage.Record) (storage.Record, error) {
	const op = "docstore/UpdateByID"

	db, err := s.connect()
	if err != nil {
		return nil, err
	}

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	for name, value := range fields {
		set[name] = value
	}
	set["updatedAt"] = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err = db.Collection(collection).FindOneAndUpdate(
		ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return storage.Record(doc), nil
}

// DeleteByID removes the document, distinguishing a missing target from a
// failed call: deleting an id that does not exist is storage.ErrNotFound.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	const op = "docstore/DeleteByID"

	db, err := s.connect()
	if err != nil {
		return err
	}

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	err = db.Collection(collection).FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Err()
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
