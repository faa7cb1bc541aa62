package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"github.com/webportal/cms-backend/internal/storage"
)

// Store is the relational record store backing banners, categories and news.
// The pg connection is a process-wide singleton handed in once; it is
// read-shared by all requests and never re-created per call.
type Store struct {
	db pg.DBI
}

var _ storage.RecordStore = (*Store)(nil)

func New(db pg.DBI) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if db, ok := s.db.(*pg.DB); ok {
		return db.Ping(ctx)
	}
	return nil
}

func (s *Store) Close() error {
	if db, ok := s.db.(*pg.DB); ok {
		return db.Close()
	}
	return nil
}

type relModel interface {
	toRecord() storage.Record
	applyField(name string, value any) error
	setID(id string)
	stamp(created, updated time.Time)
}

func (b *Banner) setID(id string) { b.ID = id }
func (b *Banner) stamp(created, updated time.Time) {
	if !created.IsZero() {
		b.CreatedAt = created
	}
	b.UpdatedAt = updated
}

func (c *Category) setID(id string) { c.ID = id }
func (c *Category) stamp(created, updated time.Time) {
	if !created.IsZero() {
		c.CreatedAt = created
	}
	c.UpdatedAt = updated
}

func (n *News) setID(id string) { n.ID = id }
func (n *News) stamp(created, updated time.Time) {
	if !created.IsZero() {
		n.CreatedAt = created
	}
	n.UpdatedAt = updated
}

func newModel(collection string) (relModel, error) {
	switch collection {
	case "banners":
		return &Banner{}, nil
	case "categories":
		return &Category{}, nil
	case "news":
		return &News{}, nil
	default:
		return nil, fmt.Errorf("unknown relational collection %q", collection)
	}
}

// FindByID returns one record or storage.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, collection, id string) (storage.Record, error) {
	model, err := newModel(collection)
	if err != nil {
		return nil, err
	}

	err = s.db.ModelContext(ctx, model).
		Where(`"t"."id" = ?`, id).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to query %s by id: %w", collection, err)
	}

	return model.toRecord(), nil
}

// List returns all records of the collection in display order. The relational
// entities carry no isActive/storeId flags, so the filter is ignored here.
func (s *Store) List(ctx context.Context, collection string, _ storage.ListFilter) ([]storage.Record, error) {
	switch collection {
	case "banners":
		var banners []Banner
		err := s.db.ModelContext(ctx, &banners).
			OrderExpr(`"t"."layoutPosition" ASC NULLS LAST, "t"."createdAt" DESC`).
			Select()
		if err != nil {
			return nil, fmt.Errorf("failed to query banners: %w", err)
		}
		records := make([]storage.Record, len(banners))
		for i := range banners {
			records[i] = banners[i].toRecord()
		}
		return records, nil

	case "categories":
		var categories []Category
		err := s.db.ModelContext(ctx, &categories).
			OrderExpr(`"t"."name" ASC`).
			Select()
		if err != nil {
			return nil, fmt.Errorf("failed to query categories: %w", err)
		}
		records := make([]storage.Record, len(categories))
		for i := range categories {
			records[i] = categories[i].toRecord()
		}
		return records, nil

	case "news":
		var news []News
		err := s.db.ModelContext(ctx, &news).
			OrderExpr(`"t"."layoutPosition" ASC NULLS LAST, "t"."date" DESC NULLS LAST`).
			Select()
		if err != nil {
			return nil, fmt.Errorf("failed to query news: %w", err)
		}
		records := make([]storage.Record, len(news))
		for i := range news {
			records[i] = news[i].toRecord()
		}
		return records, nil

	default:
		return nil, fmt.Errorf("unknown relational collection %q", collection)
	}
}

// Create inserts a new record with a store-assigned uuid id and timestamps.
func (s *Store) Create(ctx context.Context, collection string, fields storage.Record) (storage.Record, error) {
	model, err := newModel(collection)
	if err != nil {
		return nil, err
	}

	for name, value := range fields {
		if err := model.applyField(name, value); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	model.setID(uuid.NewString())
	model.stamp(now, now)

	if _, err := s.db.ModelContext(ctx, model).Insert(); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	return model.toRecord(), nil
}

// UpdateByID merges the supplied fields into the stored record and re-stamps
// updatedAt with the current server time. Returns storage.ErrNotFound when
// the target row does not exist.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, fields storage.Record) (storage.Record, error) {
	model, err := newModel(collection)
	if err != nil {
		return nil, err
	}

	err = s.db.ModelContext(ctx, model).
		Where(`"t"."id" = ?`, id).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load %s for update: %w", collection, err)
	}

	for name, value := range fields {
		if err := model.applyField(name, value); err != nil {
			return nil, err
		}
	}
	model.stamp(time.Time{}, time.Now().UTC())

	if _, err := s.db.ModelContext(ctx, model).
		WherePK().
		Update(); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", collection, err)
	}

	return model.toRecord(), nil
}

// DeleteByID removes the row when present. The relational backend deletes
// blindly: an unknown id is not an error.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	model, err := newModel(collection)
	if err != nil {
		return err
	}

	if _, err := s.db.ModelContext(ctx, model).
		Where(`"t"."id" = ?`, id).
		Delete(); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}

	return nil
}
