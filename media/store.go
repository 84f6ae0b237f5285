package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/McTechie/tubecafe-backend/config"
)

var (
	ErrInvalidFile  = errors.New("invalid file")
	ErrForeignURL   = errors.New("url does not belong to the media store")
	ErrUnknownStore = errors.New("unknown media provider")
)

// Store is an object store addressed by key that serves objects at public URLs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, error)
}

// NewStore builds the store selected by MEDIA_PROVIDER.
func NewStore(ctx context.Context, cfg config.Media) (Store, error) {
	switch cfg.Provider {
	case "gcs", "":
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.PublicBaseURL)
	case "s3", "r2":
		return NewS3Store(ctx, S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	case "minio":
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Provider)
}

// keyUnderBase strips base (scheme, host and optional path prefix) from raw.
func keyUnderBase(base, raw string) (string, error) {
	base = strings.TrimRight(base, "/")
	if base == "" || !strings.HasPrefix(raw, base+"/") {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(raw, base+"/")
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", ErrForeignURL
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return key, nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
