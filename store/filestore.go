// Package store persists trained schema snapshots as JSON files, one per
// database, so a restart does not force re-introspection.
//
// Design decisions:
//   - One file per database under the cache directory, named
//     <database>_schema.json.
//   - Saves are atomic: write to a temp file in the same directory, then
//     rename over the target.
//   - A missing file is not an error (Load returns nil, nil); a corrupt
//     file is reported so callers can decide to retrain.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TrainedSchema is the persisted snapshot of one database's schema context.
type TrainedSchema struct {
	Database   string    `json:"database"`
	SchemaText string    `json:"schema_text"`
	Tables     []string  `json:"tables,omitempty"`
	TableCount int       `json:"table_count"`
	CharCount  int       `json:"char_count"`
	TrainedAt  time.Time `json:"trained_at"`
	Source     string    `json:"source"` // "introspection"
}

// PersistenceError wraps a disk failure during load or save.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("schema store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FileStore reads and writes trained schemas under a single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &PersistenceError{Op: "save", Path: dir, Err: err}
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(database string) string {
	return filepath.Join(s.dir, database+"_schema.json")
}

// Load returns the stored snapshot for a database, or nil if none exists.
func (s *FileStore) Load(database string) (*TrainedSchema, error) {
	path := s.path(database)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	var ts TrainedSchema
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return &ts, nil
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(ts *TrainedSchema) error {
	path := s.path(ts.Database)
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ts.Database+"_schema.*.tmp")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Delete removes the stored snapshot for a database, if present.
func (s *FileStore) Delete(database string) error {
	path := s.path(database)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// List returns the databases that have stored snapshots.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.dir, Err: err}
	}
	const suffix = "_schema.json"
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			names = append(names, strings.TrimSuffix(name, suffix))
		}
	}
	return names, nil
}
