// Package pipeline moves datasets into and out of storage backends: export
// writes an in-memory dataset to a table, migrate copies a table between two
// backends. Every operation returns an outcome.Result instead of an error.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/dataset"
	"github.com/KazanKK/dataferry/internal/outcome"
)

// Mode selects what happens to an existing destination table.
type Mode int

const (
	// ModeReplace drops and recreates the destination from the dataset.
	ModeReplace Mode = iota
	// ModeAppendIfExists creates the destination when missing, else appends.
	ModeAppendIfExists
)

func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeAppendIfExists:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode reads "replace" or "append".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return ModeReplace, nil
	case "append", "append-if-exists":
		return ModeAppendIfExists, nil
	}
	return 0, fmt.Errorf("unknown export mode %q (want replace or append)", s)
}

// Exporter writes datasets to stores and reads them back. It holds no state
// between calls and provides no locking: two concurrent replaces of the
// same table race, and the backend decides which one lands last.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Export writes ds into table on store. Input is validated before the store
// is touched; a failed liveness probe is an execution failure and a
// rejected write a remote failure. ds is never modified.
func (e *Exporter) Export(ctx context.Context, ds *dataset.Dataset, store db.Store, table string, mode Mode) outcome.Result {
	if err := validateExport(ds, store, table, mode); err != nil {
		return outcome.Fail(err)
	}
	kind := store.Kind()
	log := e.logger.With("backend", kind.String(), "table", table, "mode", mode.String())

	if err := store.Ping(ctx); err != nil {
		log.Error("backend unreachable", "error", err)
		return outcome.Fail(outcome.Execution("", fmt.Errorf("connecting to %s: %w", store.Describe(), err)))
	}

	var err error
	switch mode {
	case ModeReplace:
		err = store.ReplaceTable(ctx, table, ds)
	case ModeAppendIfExists:
		err = store.AppendTable(ctx, table, ds)
	}
	if err != nil {
		log.Error("export failed", "error", err)
		return outcome.Fail(outcome.Remote("", err))
	}

	log.Info("export finished", "rows", ds.Len())
	return outcome.OK("exported %d rows to %s %s %s (%s)", ds.Len(), kind, noun(kind), table, mode)
}

func validateExport(ds *dataset.Dataset, store db.Store, table string, mode Mode) error {
	if ds == nil {
		return outcome.Validation("export", "no dataset loaded")
	}
	if ds.Width() == 0 {
		return outcome.Validation("export", "dataset has no columns")
	}
	if store == nil {
		return outcome.Validation("export", "no destination connection")
	}
	if err := db.ValidateTableName(store.Kind(), table); err != nil {
		return outcome.Validation("export", "%v", err)
	}
	if mode != ModeReplace && mode != ModeAppendIfExists {
		return outcome.Validation("export", "unknown export mode %s", mode)
	}
	return nil
}

// Read loads the whole of table from store.
func (e *Exporter) Read(ctx context.Context, store db.Store, table string) (*dataset.Dataset, outcome.Result) {
	if store == nil {
		return nil, outcome.Fail(outcome.Validation("read", "no source connection"))
	}
	kind := store.Kind()
	if err := db.ValidateTableName(kind, table); err != nil {
		return nil, outcome.Fail(outcome.Validation("read", "%v", err))
	}
	if err := store.Ping(ctx); err != nil {
		return nil, outcome.Fail(outcome.Execution("", fmt.Errorf("connecting to %s: %w", store.Describe(), err)))
	}

	ds, err := store.ReadTable(ctx, table)
	if err != nil {
		e.logger.Error("read failed", "backend", kind.String(), "table", table, "error", err)
		return nil, outcome.Fail(outcome.Remote("", err))
	}
	return ds, outcome.OK("read %d rows from %s %s %s", ds.Len(), kind, noun(kind), table)
}

func noun(kind db.Kind) string {
	if kind == db.KindMongo {
		return "collection"
	}
	return "table"
}
