package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/jackc/pgx"
	"github.com/jackc/pgx/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	// TestDBEnv names the env var holding the integration test database URL.
	// Integration tests skip when it is unset.
	TestDBEnv = "CMS_TEST_DATABASE_URL"
	// MigrationsDir is the directory containing test migrations
	MigrationsDir = "testdata/migrations"
)

var (
	// BaseTime is the base time used for test data
	BaseTime = time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC)
)

// TestDBURL returns the integration test database URL, or "" when integration
// tests should be skipped.
func TestDBURL() string {
	return os.Getenv(TestDBEnv)
}

// ResetPublicSchema drops and recreates the public schema
func ResetPublicSchema(ctx context.Context, database *pg.DB) error {
	_, err := database.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	if err != nil {
		return fmt.Errorf("reset public schema: %w", err)
	}
	return nil
}

// RunMigrations runs database migrations from the migrations directory
func RunMigrations(ctx context.Context, databaseURL, migrationsDir string) error {
	config, err := pgx.ParseConnectionString(databaseURL)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}

	sqldb := stdlib.OpenDB(config)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("ping test db: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqldb, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// LoadTestData loads test data into the database
func LoadTestData(ctx context.Context, database *pg.DB) error {
	_, err := database.ExecContext(ctx, `
		TRUNCATE TABLE "cms_banners", "cms_categories", "cms_news" CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}

	pos1, pos2 := 1, 2
	banners := []Banner{
		{ID: "banner-1", Title: "Spring Sale", ImageURL: "https://cdn.example.com/spring.png", LayoutPosition: &pos1, CreatedAt: BaseTime, UpdatedAt: BaseTime},
		{ID: "banner-2", Title: "New Arrivals", ImageURL: "https://cdn.example.com/new.png", LayoutPosition: &pos2, CreatedAt: BaseTime, UpdatedAt: BaseTime},
		{ID: "banner-3", Title: "Footer Promo", ImageURL: "https://cdn.example.com/footer.png", CreatedAt: BaseTime, UpdatedAt: BaseTime},
	}
	for i := range banners {
		if _, err := database.ModelContext(ctx, &banners[i]).Insert(); err != nil {
			return fmt.Errorf("insert banner %q: %w", banners[i].Title, err)
		}
	}

	categories := []Category{
		{ID: "cat-1", Name: "Food", LogoURL: "https://cdn.example.com/food.png", BackgroundColor: "#ffaa00", CreatedAt: BaseTime, UpdatedAt: BaseTime},
		{ID: "cat-2", Name: "Fashion", LogoURL: "https://cdn.example.com/fashion.png", BackgroundColor: "#2244ff", CreatedAt: BaseTime, UpdatedAt: BaseTime},
	}
	for i := range categories {
		if _, err := database.ModelContext(ctx, &categories[i]).Insert(); err != nil {
			return fmt.Errorf("insert category %q: %w", categories[i].Name, err)
		}
	}

	date1 := BaseTime.Add(-24 * time.Hour)
	newsItems := []News{
		{
			ID:          "news-1",
			Title:       "Mall opening hours extended",
			Description: "Longer evenings through summer.",
			Content:     "Starting next week the mall stays open until 22:00.",
			ImageURL:    "https://cdn.example.com/hours.png",
			ArticleURL:  "https://portal.example.com/news/hours",
			Date:        &date1,
			CreatedAt:   BaseTime,
			UpdatedAt:   BaseTime,
		},
		{
			ID:          "news-2",
			Title:       "Charity run this weekend",
			Description: "Join the annual run.",
			Content:     "Registration opens at 9:00 at the north entrance.",
			ImageURL:    "https://cdn.example.com/run.png",
			ArticleURL:  "https://portal.example.com/news/run",
			CreatedAt:   BaseTime,
			UpdatedAt:   BaseTime,
		},
	}
	for i := range newsItems {
		if _, err := database.ModelContext(ctx, &newsItems[i]).Insert(); err != nil {
			return fmt.Errorf("insert news %q: %w", newsItems[i].Title, err)
		}
	}

	return nil
}

// SetupTestDB initializes the test database connection and sets up the schema
func SetupTestDB(databaseURL string) (*pg.DB, error) {
	ctx := context.Background()

	opt, err := pg.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	database := pg.Connect(opt)

	if err := database.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := ResetPublicSchema(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to reset schema: %w", err)
	}

	if err := RunMigrations(ctx, databaseURL, MigrationsDir); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := LoadTestData(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to load test data: %w", err)
	}

	return database, nil
}
