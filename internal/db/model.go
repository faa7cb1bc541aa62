package db

import (
	"fmt"
	"time"

	"github.com/webportal/cms-backend/internal/storage"
)

// Relational entities keep the camelCase column naming used across the
// portal schema, one table per entity with a text uuid primary key and
// store-managed timestamps.

type Banner struct {
	tableName struct{} `pg:"cms_banners,alias:t,discard_unknown_columns"`

	ID             string    `pg:"id,pk"`
	Title          string    `pg:"title,use_zero"`
	ImageURL       string    `pg:"imageUrl,use_zero"`
	LayoutPosition *int      `pg:"layoutPosition"`
	CreatedAt      time.Time `pg:"createdAt,use_zero"`
	UpdatedAt      time.Time `pg:"updatedAt,use_zero"`
}

type Category struct {
	tableName struct{} `pg:"cms_categories,alias:t,discard_unknown_columns"`

	ID              string    `pg:"id,pk"`
	Name            string    `pg:"name,use_zero"`
	LogoURL         string    `pg:"logoUrl,use_zero"`
	BackgroundColor string    `pg:"backgroundColor,use_zero"`
	CreatedAt       time.Time `pg:"createdAt,use_zero"`
	UpdatedAt       time.Time `pg:"updatedAt,use_zero"`
}

type News struct {
	tableName struct{} `pg:"cms_news,alias:t,discard_unknown_columns"`

	ID             string     `pg:"id,pk"`
	Title          string     `pg:"title,use_zero"`
	Description    string     `pg:"description,use_zero"`
	Content        string     `pg:"content,use_zero"`
	ImageURL       string     `pg:"imageUrl,use_zero"`
	ArticleURL     string     `pg:"articleUrl,use_zero"`
	Date           *time.Time `pg:"date"`
	LayoutPosition *int       `pg:"layoutPosition"`
	CreatedAt      time.Time  `pg:"createdAt,use_zero"`
	UpdatedAt      time.Time  `pg:"updatedAt,use_zero"`
}

func (b *Banner) toRecord() storage.Record {
	rec := storage.Record{
		"id":        b.ID,
		"title":     b.Title,
		"imageUrl":  b.ImageURL,
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
	}
	if b.LayoutPosition != nil {
		rec["layoutPosition"] = *b.LayoutPosition
	}
	return rec
}

func (b *Banner) applyField(name string, value any) error {
	switch name {
	case "title":
		return setString(&b.Title, name, value)
	case "imageUrl":
		return setString(&b.ImageURL, name, value)
	case "layoutPosition":
		return setOrdinal(&b.LayoutPosition, name, value)
	default:
		return unknownField(name)
	}
}

func (c *Category) toRecord() storage.Record {
	return storage.Record{
		"id":              c.ID,
		"name":            c.Name,
		"logoUrl":         c.LogoURL,
		"backgroundColor": c.BackgroundColor,
		"createdAt":       c.CreatedAt,
		"updatedAt":       c.UpdatedAt,
	}
}

func (c *Category) applyField(name string, value any) error {
	switch name {
	case "name":
		return setString(&c.Name, name, value)
	case "logoUrl":
		return setString(&c.LogoURL, name, value)
	case "backgroundColor":
		return setString(&c.BackgroundColor, name, value)
	default:
		return unknownField(name)
	}
}

func (n *News) toRecord() storage.Record {
	rec := storage.Record{
		"id":          n.ID,
		"title":       n.Title,
		"description": n.Description,
		"content":     n.Content,
		"imageUrl":    n.ImageURL,
		"articleUrl":  n.ArticleURL,
		"createdAt":   n.CreatedAt,
		"updatedAt":   n.UpdatedAt,
	}
	if n.Date != nil {
		rec["date"] = *n.Date
	}
	if n.LayoutPosition != nil {
		rec["layoutPosition"] = *n.LayoutPosition
	}
	return rec
}

func (n *News) applyField(name string, value any) error {
	switch name {
	case "title":
		return setString(&n.Title, name, value)
	case "description":
		return setString(&n.Description, name, value)
	case "content":
		return setString(&n.Content, name, value)
	case "imageUrl":
		return setString(&n.ImageURL, name, value)
	case "articleUrl":
		return setString(&n.ArticleURL, name, value)
	case "date":
		return setTime(&n.Date, name, value)
	case "layoutPosition":
		return setOrdinal(&n.LayoutPosition, name, value)
	default:
		return unknownField(name)
	}
}

func setString(dst *string, name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q: expected string, got %T: %w", name, value, storage.ErrInvalidRecord)
	}
	*dst = s
	return nil
}

// setOrdinal accepts nullable display-ordering integers. JSON numbers decode
// as float64, so both forms are taken.
func setOrdinal(dst **int, name string, value any) error {
	switch v := value.(type) {
	case nil:
		*dst = nil
	case int:
		ord := v
		*dst = &ord
	case float64:
		ord := int(v)
		*dst = &ord
	default:
		return fmt.Errorf("field %q: expected integer or null, got %T: %w", name, value, storage.ErrInvalidRecord)
	}
	return nil
}

// setTime accepts epoch milliseconds or an RFC3339 string for client-supplied
// content dates. createdAt/updatedAt never pass through here.
func setTime(dst **time.Time, name string, value any) error {
	switch v := value.(type) {
	case nil:
		*dst = nil
	case time.Time:
		t := v.UTC()
		*dst = &t
	case float64:
		t := time.UnixMilli(int64(v)).UTC()
		*dst = &t
	case int64:
		t := time.UnixMilli(v).UTC()
		*dst = &t
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("field %q: %v: %w", name, err, storage.ErrInvalidRecord)
		}
		t = t.UTC()
		*dst = &t
	default:
		return fmt.Errorf("field %q: expected timestamp, got %T: %w", name, value, storage.ErrInvalidRecord)
	}
	return nil
}

func unknownField(name string) error {
	return fmt.Errorf("field %q is not updatable: %w", name, storage.ErrInvalidRecord)
}
