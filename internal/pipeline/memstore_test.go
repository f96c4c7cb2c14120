package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/dataset"
)

// memStore is an in-memory db.Store that records every call made to it.
type memStore struct {
	kind db.Kind

	mu       sync.Mutex
	tables   map[string]*dataset.Dataset
	calls    []string
	pingErr  error
	readErr  error
	writeErr error
	closed   bool
}

func newMemStore(kind db.Kind) *memStore {
	return &memStore{kind: kind, tables: map[string]*dataset.Dataset{}}
}

func (m *memStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *memStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memStore) Kind() db.Kind    { return m.kind }
func (m *memStore) Describe() string { return "mem://" + m.kind.String() }

func (m *memStore) Ping(context.Context) error {
	m.record("ping")
	return m.pingErr
}

func (m *memStore) ReadTable(_ context.Context, table string) (*dataset.Dataset, error) {
	m.record("read " + table)
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", table)
	}
	return ds.Head(-1), nil
}

func (m *memStore) ReplaceTable(_ context.Context, table string, ds *dataset.Dataset) error {
	m.record("replace " + table)
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = ds.Head(-1)
	return nil
}

func (m *memStore) AppendTable(_ context.Context, table string, ds *dataset.Dataset) error {
	m.record("append " + table)
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.tables[table]
	if !ok {
		m.tables[table] = ds.Head(-1)
		return nil
	}
	rows := make([][]any, 0, prev.Len()+ds.Len())
	for i := 0; i < prev.Len(); i++ {
		rows = append(rows, prev.Row(i))
	}
	for i := 0; i < ds.Len(); i++ {
		rows = append(rows, ds.Row(i))
	}
	merged, err := dataset.WithTypes(prev.Columns(), rows)
	if err != nil {
		return err
	}
	m.tables[table] = merged
	return nil
}

func (m *memStore) Close() error {
	m.record("close")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// memOpener hands out pre-built stores by kind.
type memOpener struct {
	stores map[db.Kind]*memStore
	err    error
}

func (o *memOpener) Build(_ context.Context, kind db.Kind, _ db.ConnectionDescriptor) (db.Store, error) {
	if o.err != nil {
		return nil, o.err
	}
	s, ok := o.stores[kind]
	if !ok {
		return nil, errors.New("no store for " + kind.String())
	}
	return s, nil
}
