// Package media stores profile images on local disk or in an S3 bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/focoshop/focoshop-be/internal/config"
)

// Object is a stored image as seen by List.
type Object struct {
	Ref     string
	ModTime time.Time
}

// Store is implemented by LocalStore and S3Store. Refs returned by Save are
// what gets persisted on the user record; Delete ignores refs it does not own.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
	List(ctx context.Context) ([]Object, error)
}

// New builds the store selected by IMAGE_STORAGE.
func New(ctx context.Context, cfg config.UploadConfig) (Store, error) {
	switch cfg.Storage {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "local", "":
		return NewLocalStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("media: unsupported storage %q", cfg.Storage)
	}
}
