package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

// FileArchive stores each record as a JSON file named by its ID.
type FileArchive struct {
	mu  sync.RWMutex
	dir string
}

// NewFileArchive opens, and if needed creates, a file archive in dir.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create archive dir")
	}
	return &FileArchive{dir: dir}, nil
}

// Dir returns the archive directory.
func (a *FileArchive) Dir() string { return a.dir }

func (a *FileArchive) recordPath(id string) string {
	return filepath.Join(a.dir, id+".json")
}

func (a *FileArchive) Save(ctx context.Context, rec *Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal record")
	}

	f, err := os.OpenFile(a.recordPath(rec.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if os.IsExist(err) {
		return errors.New(errors.ErrCodeInvalidInput, "record %s already archived", rec.ID)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create record file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write record file")
	}
	return f.Close()
}

func (a *FileArchive) Get(ctx context.Context, id string) (*Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.read(a.recordPath(id))
}

func (a *FileArchive) Latest(ctx context.Context, configHash string) (*Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read archive dir")
	}

	var latest *Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := a.read(filepath.Join(a.dir, entry.Name()))
		if err != nil || rec == nil {
			continue
		}
		if configHash != "" && rec.ConfigHash != configHash {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	return latest, nil
}

func (a *FileArchive) read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read record file")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", filepath.Base(path))
	}
	return &rec, nil
}

func (a *FileArchive) Close() error { return nil }

var _ Archive = (*FileArchive)(nil)
