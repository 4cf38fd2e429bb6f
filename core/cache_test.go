package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/askdb/askdb/db"
	"github.com/askdb/askdb/store"
)

type fakeIntrospector struct {
	calls  int
	schema *db.Schema
	err    error
}

func (f *fakeIntrospector) IntrospectSchema(ctx context.Context) (*db.Schema, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.schema, nil
}

type memStore struct {
	m       map[string]*store.TrainedSchema
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{m: map[string]*store.TrainedSchema{}}
}

func (s *memStore) Load(database string) (*store.TrainedSchema, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.m[database], nil
}

func (s *memStore) Save(ts *store.TrainedSchema) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.m[ts.Database] = ts
	return nil
}

func TestGetOrTrainTrainsOnceThenHitsMemory(t *testing.T) {
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(newMemStore(), 0)

	ts1, err := c.GetOrTrain(context.Background(), "shop", intro)
	if err != nil {
		t.Fatalf("first GetOrTrain: %v", err)
	}
	if ts1.TableCount != 2 {
		t.Errorf("TableCount = %d, want 2", ts1.TableCount)
	}
	if len(ts1.Tables) != 2 {
		t.Errorf("Tables = %v, want two names", ts1.Tables)
	}

	ts2, err := c.GetOrTrain(context.Background(), "shop", intro)
	if err != nil {
		t.Fatalf("second GetOrTrain: %v", err)
	}
	if ts2 != ts1 {
		t.Error("second lookup should hit the in-memory entry")
	}
	if intro.calls != 1 {
		t.Errorf("introspection calls = %d, want 1", intro.calls)
	}
}

func TestGetOrTrainUsesDiskBeforeTraining(t *testing.T) {
	st := newMemStore()
	st.m["shop"] = &store.TrainedSchema{Database: "shop", SchemaText: "TABLE cached", TableCount: 1}
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(st, 0)

	ts, err := c.GetOrTrain(context.Background(), "shop", intro)
	if err != nil {
		t.Fatalf("GetOrTrain: %v", err)
	}
	if ts.SchemaText != "TABLE cached" {
		t.Errorf("SchemaText = %q, want disk entry", ts.SchemaText)
	}
	if intro.calls != 0 {
		t.Errorf("introspection calls = %d, want 0", intro.calls)
	}
}

func TestGetOrTrainTreatsCorruptDiskAsAbsent(t *testing.T) {
	st := newMemStore()
	st.loadErr = errors.New("unexpected end of JSON input")
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(st, 0)

	ts, err := c.GetOrTrain(context.Background(), "shop", intro)
	if err != nil {
		t.Fatalf("GetOrTrain: %v", err)
	}
	if intro.calls != 1 {
		t.Errorf("introspection calls = %d, want 1 (retrain on corrupt cache)", intro.calls)
	}
	if ts == nil || ts.TableCount != 2 {
		t.Errorf("unexpected snapshot: %+v", ts)
	}
}

func TestTrainFailureLeavesPreviousEntry(t *testing.T) {
	intro := &fakeIntrospector{schema: sampleSchema()}
	st := newMemStore()
	c := NewCache(st, 0)

	if _, err := c.Train(context.Background(), "shop", intro); err != nil {
		t.Fatalf("initial train: %v", err)
	}

	intro.err = errors.New("connection reset")
	_, err := c.Train(context.Background(), "shop", intro)
	var trainErr *SchemaTrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("error = %v, want SchemaTrainingError", err)
	}
	if trainErr.Database != "shop" {
		t.Errorf("Database = %q, want shop", trainErr.Database)
	}

	if ts := c.Cached("shop"); ts == nil || ts.TableCount != 2 {
		t.Errorf("previous entry should survive a failed retrain: %+v", ts)
	}
	if st.m["shop"] == nil {
		t.Error("persisted entry should survive a failed retrain")
	}
}

func TestTrainReturnsSnapshotOnSaveFailure(t *testing.T) {
	st := newMemStore()
	st.saveErr = errors.New("disk full")
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(st, 0)

	ts, err := c.Train(context.Background(), "shop", intro)
	if err == nil {
		t.Fatal("expected save error")
	}
	if ts == nil || ts.TableCount != 2 {
		t.Errorf("snapshot should be returned despite save failure: %+v", ts)
	}
	if c.Cached("shop") == nil {
		t.Error("memory entry should be set despite save failure")
	}
}

func TestInvalidateForcesDiskReread(t *testing.T) {
	st := newMemStore()
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(st, 0)

	if _, err := c.Train(context.Background(), "shop", intro); err != nil {
		t.Fatalf("train: %v", err)
	}
	c.Invalidate("shop")

	// Disk still has the snapshot, so no retraining happens.
	ts, err := c.GetOrTrain(context.Background(), "shop", intro)
	if err != nil {
		t.Fatalf("GetOrTrain: %v", err)
	}
	if ts == nil || intro.calls != 1 {
		t.Errorf("calls = %d, want 1 (disk hit after invalidate)", intro.calls)
	}
}

func TestStatusReportsTriState(t *testing.T) {
	st := newMemStore()
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(st, 0)

	if s := c.Status("shop"); s != StateNotTrained {
		t.Errorf("Status = %q, want %q", s, StateNotTrained)
	}

	st.m["shop"] = &store.TrainedSchema{Database: "shop", SchemaText: "TABLE cached", TableCount: 1}
	if s := c.Status("shop"); s != StateOnDisk {
		t.Errorf("Status = %q, want %q", s, StateOnDisk)
	}
	// Neither Status nor Peek promote the disk entry into memory.
	if c.Peek("shop") == nil {
		t.Fatal("Peek should see the disk entry")
	}
	if s := c.Status("shop"); s != StateOnDisk {
		t.Errorf("Status after Peek = %q, want %q", s, StateOnDisk)
	}

	if _, err := c.Train(context.Background(), "shop", intro); err != nil {
		t.Fatalf("train: %v", err)
	}
	if s := c.Status("shop"); s != StateInMemory {
		t.Errorf("Status after train = %q, want %q", s, StateInMemory)
	}

	c.Invalidate("shop")
	if s := c.Status("shop"); s != StateOnDisk {
		t.Errorf("Status after invalidate = %q, want %q", s, StateOnDisk)
	}
}

func TestStatusTreatsUnreadableDiskAsNotTrained(t *testing.T) {
	st := newMemStore()
	st.loadErr = errors.New("unexpected end of JSON input")
	c := NewCache(st, 0)

	if s := c.Status("shop"); s != StateNotTrained {
		t.Errorf("Status = %q, want %q", s, StateNotTrained)
	}
	if ts := c.Peek("shop"); ts != nil {
		t.Errorf("Peek = %+v, want nil", ts)
	}
}

type slowIntrospector struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	schema  *db.Schema
}

func (f *slowIntrospector) IntrospectSchema(ctx context.Context) (*db.Schema, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	<-f.release
	return f.schema, nil
}

func TestConcurrentTrainingCoalesces(t *testing.T) {
	intro := &slowIntrospector{schema: sampleSchema(), release: make(chan struct{})}
	c := NewCache(newMemStore(), 0)

	const n = 8
	results := make([]*store.TrainedSchema, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrTrain(context.Background(), "shop", intro)
		}(i)
	}
	// Give the callers time to pile up behind the in-flight introspection.
	time.Sleep(20 * time.Millisecond)
	close(intro.release)
	wg.Wait()

	intro.mu.Lock()
	calls := intro.calls
	intro.mu.Unlock()
	if calls != 1 {
		t.Errorf("introspection calls = %d, want 1", calls)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("caller %d got a different snapshot", i)
		}
	}
}

func TestTrainAppliesCharBudget(t *testing.T) {
	intro := &fakeIntrospector{schema: sampleSchema()}
	c := NewCache(newMemStore(), 30)

	ts, err := c.Train(context.Background(), "shop", intro)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if ts.CharCount > 30 {
		t.Errorf("CharCount = %d, want <= 30", ts.CharCount)
	}
}
