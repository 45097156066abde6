package registry

import (
	"context"
	"strings"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
)

// Store loads and atomically replaces the persisted registry.
type Store interface {
	// Load returns the last persisted registry. A missing registry is empty.
	Load(ctx context.Context) (*clients.Registry, error)

	// Save replaces the persisted registry. On failure the previous snapshot
	// is left intact.
	Save(ctx context.Context, reg *clients.Registry) error

	// Location describes where the registry lives.
	Location() string
}

// Open returns the store for a location: an s3://bucket/key URI or a file
// path (optionally prefixed with file://).
func Open(ctx context.Context, location string, opts ...S3Option) (Store, error) {
	switch {
	case location == "":
		return nil, errors.NewConfigError("registry", "registry location is required", nil)
	case strings.HasPrefix(location, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, errors.NewConfigError("registry", "s3 location must be s3://bucket/key", nil)
		}
		return NewS3(ctx, bucket, key, opts...)
	default:
		return NewFile(strings.TrimPrefix(location, "file://")), nil
	}
}
