// Package driver selects a storage.Backend implementation from configuration.
package driver

import (
	"context"
	"fmt"

	"study-tracker-be/pkg/storage"
	"study-tracker-be/pkg/storage/local"
	s3store "study-tracker-be/pkg/storage/s3"
)

type Config struct {
	Driver       string
	MaxDepth     int
	LocalRoot    string
	LocalBaseURL string
	S3           s3store.Config
}

// Open returns the configured backend. Driver "none" yields a nil backend and
// disables storage integration.
func Open(ctx context.Context, cfg Config) (storage.Backend, error) {
	driver := storage.Driver(cfg.Driver)
	if driver == "" {
		driver = storage.DriverLocal
	}
	switch driver {
	case storage.DriverLocal:
		return local.New(cfg.LocalRoot, cfg.LocalBaseURL, cfg.MaxDepth)
	case storage.DriverS3:
		s3cfg := cfg.S3
		if s3cfg.MaxDepth == 0 {
			s3cfg.MaxDepth = cfg.MaxDepth
		}
		return s3store.New(ctx, s3cfg)
	case storage.DriverNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
