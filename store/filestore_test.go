package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func sampleSnapshot() *TrainedSchema {
	return &TrainedSchema{
		Database:   "shop",
		SchemaText: "TABLE users\n  id integer [PK]",
		Tables:     []string{"users"},
		TableCount: 1,
		CharCount:  30,
		TrainedAt:  time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Source:     "introspection",
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("shop")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.SchemaText != sampleSnapshot().SchemaText {
		t.Errorf("SchemaText = %q", got.SchemaText)
	}
	if !got.TrainedAt.Equal(sampleSnapshot().TrainedAt) {
		t.Errorf("TrainedAt = %v", got.TrainedAt)
	}
	if len(got.Tables) != 1 || got.Tables[0] != "users" {
		t.Errorf("Tables = %v", got.Tables)
	}
}

func TestLoadMissingIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load("never_trained")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestLoadCorruptFileReportsPersistenceError(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), "shop_schema.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load("shop")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
	if perr.Op != "load" {
		t.Errorf("Op = %q, want load", perr.Op)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	s := newTestStore(t)
	first := sampleSnapshot()
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}

	second := sampleSnapshot()
	second.SchemaText = "TABLE users\nTABLE orders"
	second.TableCount = 2
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load("shop")
	if err != nil {
		t.Fatal(err)
	}
	if got.TableCount != 2 {
		t.Errorf("TableCount = %d, want 2", got.TableCount)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"shop", "analytics"} {
		ts := sampleSnapshot()
		ts.Database = name
		if err := s.Save(ts); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("List = %v, want two entries", names)
	}

	if err := s.Delete("shop"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("shop"); err != nil {
		t.Errorf("repeat Delete should be a no-op, got %v", err)
	}

	got, err := s.Load("shop")
	if err != nil || got != nil {
		t.Errorf("Load after Delete = %+v, %v; want nil, nil", got, err)
	}
}
