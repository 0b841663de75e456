// Package archive keeps a history of frozen placements.
//
// Every `ttlayout place --archive` run stores the module table it produced,
// with every module pinned to its placed cell, so a later run can restore
// exactly the same floorplan even after the module list changed.
//
// Two backends implement [Archive]:
//   - [FileArchive]: JSON files under the user config directory
//   - [MongoArchive]: a MongoDB collection shared between machines
//
// Records are looked up by ID or by the hash of the configuration they were
// placed with:
//
//	a, err := archive.Open(ctx, "mongodb://localhost:27017/ttlayout")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	rec, err := a.Latest(ctx, cfgHash)
//	if rec == nil {
//	    // nothing archived for this configuration
//	}
package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// Record is one archived placement.
type Record struct {
	ID         string              `json:"id" bson:"_id"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	ConfigHash string              `json:"config_hash" bson:"config_hash"`
	Modules    []placer.ModuleSlot `json:"modules" bson:"modules"`
}

// NewRecord freezes p into a new record with a random ID.
func NewRecord(configHash string, p *placer.Placement) *Record {
	return &Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		ConfigHash: configHash,
		Modules:    p.Modules(),
	}
}

// Archive is the interface for placement history backends.
type Archive interface {
	// Save stores rec. Saving an existing ID is an error.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID, or nil, nil if there is none.
	Get(ctx context.Context, id string) (*Record, error)

	// Latest returns the newest record for configHash, or nil, nil if there
	// is none. An empty configHash matches every record.
	Latest(ctx context.Context, configHash string) (*Record, error)

	Close() error
}

// DefaultDir returns the directory of the default file archive.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate user config directory")
	}
	return filepath.Join(base, "ttlayout", "archive"), nil
}

// Open returns the archive described by spec: a mongodb:// or
// mongodb+srv:// URL connects to MongoDB, anything else is a directory for
// a file archive. An empty spec uses [DefaultDir].
func Open(ctx context.Context, spec string) (Archive, error) {
	if strings.HasPrefix(spec, "mongodb://") || strings.HasPrefix(spec, "mongodb+srv://") {
		a, err := NewMongoArchive(ctx, spec)
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	dir := spec
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	a, err := NewFileArchive(dir)
	if err != nil {
		return nil, err
	}
	return a, nil
}
