// Package media issues presigned upload URLs for banner and logo imagery
// against the portal's S3-compatible object storage.
package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/webportal/cms-backend/internal/storage"
)

// DefaultUploadTTL bounds how long a presigned PUT URL stays valid.
const DefaultUploadTTL = 15 * time.Minute

var allowedContentTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Uploads wraps the object-storage client. A nil client (storage not
// configured) makes every call fail fast with storage.ErrNotConfigured.
type Uploads struct {
	client    *mclient.Client
	bucket    string
	uploadTTL time.Duration
}

// Config carries the object-storage connection settings.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UploadTTL time.Duration
}

// UploadTicket is what a client needs to PUT an image directly to storage.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int64  `json:"expiresIn"`
}

// New builds the uploads service. An empty endpoint yields a service whose
// operations fail with storage.ErrNotConfigured, mirroring the admin store.
func New(ctx context.Context, cfg Config) (*Uploads, error) {
	const op = "media/New"

	if cfg.Endpoint == "" {
		return &Uploads{}, nil
	}

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	ttl := cfg.UploadTTL
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}

	return &Uploads{client: client, bucket: cfg.Bucket, uploadTTL: ttl}, nil
}

// UploadURL generates a presigned PUT URL for an image under
// "<kind>/<uuid>.<ext>" where kind is "banners" or "logos".
func (u *Uploads) UploadURL(ctx context.Context, kind, contentType string) (*UploadTicket, error) {
	const op = "media/UploadURL"

	if u.client == nil {
		return nil, storage.ErrNotConfigured
	}

	if kind != "banners" && kind != "logos" {
		return nil, fmt.Errorf("unknown upload kind %q: %w", kind, storage.ErrInvalidRecord)
	}

	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("content type %q not allowed: %w", contentType, storage.ErrInvalidRecord)
	}

	key := path.Join(kind, uuid.NewString()+ext)

	presigned, err := u.client.PresignedPutObject(ctx, u.bucket, key, u.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &UploadTicket{
		UploadURL: presigned.String(),
		Key:       key,
		ExpiresIn: int64(u.uploadTTL.Seconds()),
	}, nil
}
