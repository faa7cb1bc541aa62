package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-pg/pg/v10"
	"github.com/labstack/echo/v4"

	"github.com/webportal/cms-backend/config"
	"github.com/webportal/cms-backend/internal/adminstore"
	"github.com/webportal/cms-backend/internal/cms"
	"github.com/webportal/cms-backend/internal/db"
	"github.com/webportal/cms-backend/internal/docstore"
	"github.com/webportal/cms-backend/internal/media"
	"github.com/webportal/cms-backend/internal/rest"
)

type App struct {
	Logger *slog.Logger
	Echo   *echo.Echo
	Config config.Config

	documents *docstore.Store
	admin     *adminstore.Store
}

// New builds the three stores, the manager and the HTTP surface. Backend
// clients are created once here and shared for the process lifetime; stores
// whose configuration is absent stay constructed and fail per call with the
// configuration error instead of crashing startup.
func New(ctx context.Context, cfg config.Config, pgConnect *pg.DB, logger *slog.Logger) (*App, error) {
	cfg.Collections.Resolve(cfg.Tenant)

	relational := db.New(pgConnect)
	documents := docstore.New(cfg.Mongo.URL, cfg.Mongo.Database)
	admin := adminstore.New(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)

	uploads, err := media.New(ctx, media.Config{
		Endpoint:  cfg.S3.Endpoint,
		Bucket:    cfg.S3.Bucket,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UploadTTL: cfg.S3.UploadTTL.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("media init: %w", err)
	}

	manager := cms.New(relational, documents, admin, cfg.Collections)
	handler := rest.NewHandler(manager, uploads, logger)

	e := echo.New()
	e.HideBanner = true

	if cfg.GeoIP.Enabled {
		e.Pre(rest.GeoIPGate(rest.GeoIPConfig{
			LookupURL:        cfg.GeoIP.LookupURL,
			TrustedIP:        cfg.GeoIP.TrustedIP,
			BlockedCountries: cfg.GeoIP.BlockedCountries,
			BlockedPath:      cfg.GeoIP.BlockedPath,
			Timeout:          cfg.GeoIP.Timeout.Duration,
		}, logger))
	}

	handler.RegisterRoutes(e)

	return &App{
		Logger:    logger,
		Echo:      e,
		Config:    cfg,
		documents: documents,
		admin:     admin,
	}, nil
}

func (a *App) Run() error {
	addr := fmt.Sprintf("%s:%d", a.Config.App.Host, a.Config.App.Port)
	return a.Echo.Start(addr)
}

// GracefulShutdown stops the HTTP server, then disconnects the backend
// clients the app owns. The pg handle is closed by main, which opened it.
func (a *App) GracefulShutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if err == http.ErrServerClosed {
		err = nil
	}

	if cerr := a.documents.Close(ctx); cerr != nil {
		a.Logger.Error("mongo disconnect failed", "error", cerr)
		if err == nil {
			err = cerr
		}
	}
	if cerr := a.admin.Close(); cerr != nil {
		a.Logger.Error("firestore close failed", "error", cerr)
		if err == nil {
			err = cerr
		}
	}

	return err
}
