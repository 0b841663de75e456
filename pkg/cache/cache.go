// Package cache stores computed floorplans and rendered artifacts.
//
// Floorplan runs are pure functions of the configuration and the module
// list, so their results are cached under a content hash of both. The
// [Cache] interface has three backends:
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, used with --no-cache
//
// [Open] picks the backend from a URL-like string:
//
//	c, err := cache.Open(ctx, "redis://localhost:6379/0")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().FloorplanKey(cfgHash, modulesHash)
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// Entry lifetimes.
const (
	FloorplanTTL = 7 * 24 * time.Hour
	ArtifactTTL  = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultDir returns the directory of the default file cache.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate user cache directory")
	}
	return filepath.Join(base, "ttlayout"), nil
}

// Open returns the cache described by spec: "none" disables caching, a
// redis:// or rediss:// URL connects to Redis, anything else is a
// directory for a file cache. An empty spec uses [DefaultDir].
func Open(ctx context.Context, spec string) (Cache, error) {
	switch {
	case spec == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		c, err := NewRedisCache(ctx, spec)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	dir := spec
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
