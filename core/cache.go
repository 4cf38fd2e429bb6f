package core

import (
	"context"
	"sync"
	"time"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/db"
	"github.com/askdb/askdb/store"
	"golang.org/x/sync/singleflight"
)

// Introspector is the slice of db.Conn the cache needs.
type Introspector interface {
	IntrospectSchema(ctx context.Context) (*db.Schema, error)
}

// Store persists trained schemas between runs. *store.FileStore satisfies
// this; tests substitute in-memory fakes.
type Store interface {
	Load(database string) (*store.TrainedSchema, error)
	Save(ts *store.TrainedSchema) error
}

// SchemaState reports where a database's schema context currently lives.
type SchemaState string

const (
	StateNotTrained SchemaState = "not_trained"
	StateInMemory   SchemaState = "in_memory"
	StateOnDisk     SchemaState = "on_disk"
)

// Cache resolves schema context per database: memory first, then disk, then
// live introspection ("training"). Concurrent training requests for the
// same database are collapsed to one introspection.
type Cache struct {
	store  Store
	budget int

	mu    sync.RWMutex
	mem   map[string]*store.TrainedSchema
	group singleflight.Group
}

// NewCache wraps a persistence store with an in-memory layer.
func NewCache(st Store, charBudget int) *Cache {
	return &Cache{
		store:  st,
		budget: charBudget,
		mem:    map[string]*store.TrainedSchema{},
	}
}

// Cached returns the snapshot for a database without training: memory
// first, then disk. A corrupt or unreadable disk entry is treated as
// absent. Returns nil when nothing is cached.
func (c *Cache) Cached(database string) *store.TrainedSchema {
	c.mu.RLock()
	ts := c.mem[database]
	c.mu.RUnlock()
	if ts != nil {
		return ts
	}

	ts, err := c.store.Load(database)
	if err != nil {
		applog.Error("schema cache load for %s: %v", database, err)
		return nil
	}
	if ts == nil {
		return nil
	}
	c.mu.Lock()
	c.mem[database] = ts
	c.mu.Unlock()
	return ts
}

// Peek returns the snapshot for a database without promoting a disk entry
// into memory, so status reporting never mutates the cache. Returns nil
// when nothing is cached or the disk entry is unreadable.
func (c *Cache) Peek(database string) *store.TrainedSchema {
	c.mu.RLock()
	ts := c.mem[database]
	c.mu.RUnlock()
	if ts != nil {
		return ts
	}
	ts, err := c.store.Load(database)
	if err != nil {
		return nil
	}
	return ts
}

// Status reports whether a database's context is untrained, loaded in
// memory, or persisted on disk only. Like Peek, it never promotes.
func (c *Cache) Status(database string) SchemaState {
	c.mu.RLock()
	_, ok := c.mem[database]
	c.mu.RUnlock()
	if ok {
		return StateInMemory
	}
	if ts, err := c.store.Load(database); err == nil && ts != nil {
		return StateOnDisk
	}
	return StateNotTrained
}

// GetOrTrain returns the cached snapshot, training on a miss. When training
// succeeds but persisting fails, the snapshot is still returned together
// with the save error so callers can decide whether to surface it.
func (c *Cache) GetOrTrain(ctx context.Context, database string, conn Introspector) (*store.TrainedSchema, error) {
	if ts := c.Cached(database); ts != nil {
		return ts, nil
	}
	return c.Train(ctx, database, conn)
}

// Train introspects the database and replaces the cached snapshot.
// Introspection failure leaves the previous snapshot (if any) untouched and
// returns a SchemaTrainingError. A persistence failure after successful
// introspection returns the new snapshot alongside the save error.
func (c *Cache) Train(ctx context.Context, database string, conn Introspector) (*store.TrainedSchema, error) {
	v, err, _ := c.group.Do(database, func() (any, error) {
		schema, err := conn.IntrospectSchema(ctx)
		if err != nil {
			return nil, &SchemaTrainingError{Database: database, Err: err}
		}
		schema.Database = database

		text, _ := FlattenSchema(schema, c.budget)
		names := make([]string, len(schema.Tables))
		for i, t := range schema.Tables {
			names[i] = t.Name
		}
		ts := &store.TrainedSchema{
			Database:   database,
			SchemaText: text,
			Tables:     names,
			TableCount: len(schema.Tables),
			CharCount:  len(text),
			TrainedAt:  time.Now().UTC(),
			Source:     "introspection",
		}

		c.mu.Lock()
		c.mem[database] = ts
		c.mu.Unlock()

		if err := c.store.Save(ts); err != nil {
			return ts, err
		}
		return ts, nil
	})

	ts, _ := v.(*store.TrainedSchema)
	return ts, err
}

// Invalidate drops the in-memory entry so the next lookup re-reads disk or
// retrains.
func (c *Cache) Invalidate(database string) {
	c.mu.Lock()
	delete(c.mem, database)
	c.mu.Unlock()
}
