package solutions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/synvisio/pkg/errors"
)

// Archive persists store snapshots per dataset.
type Archive interface {
	// Load returns the snapshot saved for dataset, or nil, nil if there is
	// none.
	Load(ctx context.Context, dataset string) (*Snapshot, error)

	// Store replaces the snapshot saved for the snapshot's dataset.
	Store(ctx context.Context, snap *Snapshot) error
}

// Merge folds snap into the snapshot archived for the same dataset and stores
// the result. Archived entries survive unless snap holds a better one.
func Merge(ctx context.Context, a Archive, snap *Snapshot) error {
	existing, err := a.Load(ctx, snap.Dataset)
	if err != nil {
		return err
	}
	merged := NewStore()
	merged.Restore(existing)
	merged.Restore(snap)
	return a.Store(ctx, merged.Snapshot(snap.Dataset))
}

// FileArchive keeps one JSON file per dataset in a directory.
type FileArchive struct {
	mu  sync.RWMutex
	dir string
}

// NewFileArchive creates an archive in dir, creating the directory if needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create solutions dir")
	}
	return &FileArchive{dir: dir}, nil
}

func (a *FileArchive) path(dataset string) (string, error) {
	if err := errors.ValidateName(dataset); err != nil {
		return "", err
	}
	return filepath.Join(a.dir, dataset+".json"), nil
}

func (a *FileArchive) Load(ctx context.Context, dataset string) (*Snapshot, error) {
	path, err := a.path(dataset)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read solutions for %s", dataset)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse solutions for %s", dataset)
	}
	return &snap, nil
}

func (a *FileArchive) Store(ctx context.Context, snap *Snapshot) error {
	path, err := a.path(snap.Dataset)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal solutions")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write solutions for %s", snap.Dataset)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write solutions for %s", snap.Dataset)
	}
	return nil
}

// Path returns the archive directory.
func (a *FileArchive) Path() string { return a.dir }

var _ Archive = (*FileArchive)(nil)
