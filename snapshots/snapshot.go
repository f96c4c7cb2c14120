// Package snapshot backs a table up to a directory and restores it again.
// A snapshot directory holds data.csv and a manifest.json recording the
// source backend and the column types, so a restore into any backend
// recreates the same schema.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/dataset"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/pipeline"
)

const (
	manifestFile = "manifest.json"
	dataFile     = "data.csv"
)

type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Manifest struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	Table     string       `json:"table"`
	Columns   []ColumnInfo `json:"columns"`
	Rows      int          `json:"rows"`
	CreatedAt time.Time    `json:"created_at"`

	// Dir is where the snapshot was found; not persisted.
	Dir string `json:"-"`
}

func (m Manifest) dataPath() string { return filepath.Join(m.Dir, dataFile) }

// NewDir names a fresh snapshot directory under root. Path separators in
// table become underscores so the directory always sits directly in root.
func NewDir(root string, kind db.Kind, table string) string {
	stamp := time.Now().UTC().Format("20060102-150405")
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, table)
	return filepath.Join(root, fmt.Sprintf("%s-%s-%s", kind, safe, stamp))
}

// Backup reads table from store and writes it to dir, which must not exist
// yet or be empty.
func Backup(ctx context.Context, exporter *pipeline.Exporter, store db.Store, table, dir string) (Manifest, outcome.Result) {
	if err := ensureEmptyDir(dir); err != nil {
		return Manifest{}, outcome.Fail(err)
	}

	ds, res := exporter.Read(ctx, store, table)
	if !res.Success {
		return Manifest{}, res
	}

	m := Manifest{
		ID:        uuid.NewString(),
		Kind:      store.Kind().String(),
		Table:     table,
		Rows:      ds.Len(),
		CreatedAt: time.Now().UTC(),
		Dir:       dir,
	}
	for _, c := range ds.Columns() {
		m.Columns = append(m.Columns, ColumnInfo{Name: c.Name, Type: c.Type.String()})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, outcome.Fail(outcome.Execution("backup", fmt.Errorf("creating snapshot directory: %w", err)))
	}

	if err := dataset.SaveCSVExact(m.dataPath(), ds); err != nil {
		return Manifest{}, outcome.Fail(outcome.Execution("backup", err))
	}
	if err := writeManifest(m); err != nil {
		return Manifest{}, outcome.Fail(outcome.Execution("backup", err))
	}
	return m, outcome.OK("backed up %d rows of %s %s to %s", m.Rows, m.Kind, table, dir)
}

// Restore replace-writes the snapshot in dir into table on store. An empty
// table restores under the table name recorded in the snapshot.
func Restore(ctx context.Context, exporter *pipeline.Exporter, dir string, store db.Store, table string) outcome.Result {
	m, err := ReadManifest(dir)
	if err != nil {
		return outcome.Fail(outcome.Validation("restore", "%v", err))
	}
	ds, err := m.Load()
	if err != nil {
		return outcome.Fail(outcome.Validation("restore", "%v", err))
	}
	if table == "" {
		table = m.Table
	}

	res := exporter.Export(ctx, ds, store, table, pipeline.ModeReplace)
	if !res.Success {
		return res
	}
	return outcome.OK("restored %d rows from snapshot %s into %s %s", ds.Len(), m.ID, store.Kind(), table)
}

// Load reads the snapshot's data with the column types it was taken with.
func (m Manifest) Load() (*dataset.Dataset, error) {
	columns := make([]dataset.Column, len(m.Columns))
	for i, c := range m.Columns {
		t, err := dataset.ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", m.ID, err)
		}
		columns[i] = dataset.Column{Name: c.Name, Type: t}
	}
	return dataset.LoadCSVExact(m.dataPath(), columns)
}

// ReadManifest loads dir/manifest.json.
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading snapshot manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing snapshot manifest: %w", err)
	}
	if m.Table == "" {
		return Manifest{}, fmt.Errorf("snapshot manifest in %s names no table", dir)
	}
	m.Dir = dir
	return m, nil
}

// List returns the snapshots directly under root, oldest first. A missing
// root holds no snapshots.
func List(root string) ([]Manifest, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}

	var out []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := ReadManifest(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func writeManifest(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(m.Dir, manifestFile), data, 0o644)
}

func ensureEmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return outcome.Validation("backup", "snapshot directory %s: %v", dir, err)
	case len(entries) > 0:
		return outcome.Validation("backup", "snapshot directory %s is not empty", dir)
	}
	return nil
}
