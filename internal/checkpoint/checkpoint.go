// Package checkpoint persists crawl progress so a multi-hour crawl survives
// interruption.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/pawmetric/survey-cli/internal/model"
)

// Store saves and restores crawl progress.
type Store interface {
	Save(p *model.Progress) error
	Load() (*model.Progress, error)
	Clear() error
}

// FileStore is a Store backed by a single JSON file. Saves go through a
// temp-file-then-rename sequence so a crash mid-write never corrupts the
// previous checkpoint.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save serializes the progress to the checkpoint file atomically.
func (s *FileStore) Save(p *model.Progress) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal progress")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "checkpoint: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return eris.Wrap(err, "checkpoint: create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "checkpoint: close temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "checkpoint: rename to %s", s.path)
	}
	return nil
}

// Load returns the last saved progress, or nil when no checkpoint exists.
// A checkpoint written by a different schema version refuses to load.
func (s *FileStore) Load() (*model.Progress, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "checkpoint: read %s", s.path)
	}

	var p model.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "checkpoint: parse %s", s.path)
	}
	if p.SchemaVersion != model.ProgressSchemaVersion {
		return nil, eris.Errorf("checkpoint: schema version %d, want %d (delete %s to start over)",
			p.SchemaVersion, model.ProgressSchemaVersion, s.path)
	}
	if p.Records == nil {
		p.Records = make(map[string]model.Record)
	}
	if p.Stats == nil {
		p.Stats = make(map[string]int)
	}
	return &p, nil
}

// Clear deletes the checkpoint file. Missing files are not an error; Clear
// is called only after a crawl fully completes.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "checkpoint: remove %s", s.path)
	}
	return nil
}
