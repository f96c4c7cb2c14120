package pipeline

import (
	"context"
	"log/slog"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/outcome"
)

// Migrator copies a whole table from one store to another in a single,
// non-incremental pass. A failure while writing can leave the destination
// dropped but not repopulated on backends without transactional DDL.
type Migrator struct {
	exporter *Exporter
	logger   *slog.Logger
}

func NewMigrator(exporter *Exporter, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = NewExporter(logger)
	}
	return &Migrator{exporter: exporter, logger: logger}
}

// Migrate reads srcTable from src and replace-writes it into dstTable on
// dst. Nothing is written when the read fails.
func (m *Migrator) Migrate(ctx context.Context, src db.Store, srcTable string, dst db.Store, dstTable string) outcome.Result {
	if dst == nil {
		return outcome.Fail(outcome.Validation("migrate", "no destination connection"))
	}
	if err := db.ValidateTableName(dst.Kind(), dstTable); err != nil {
		return outcome.Fail(outcome.Validation("migrate", "%v", err))
	}

	ds, read := m.exporter.Read(ctx, src, srcTable)
	if !read.Success {
		m.logger.Warn("migration aborted before writing", "source", srcTable, "error", read.Message)
		return read
	}

	res := m.exporter.Export(ctx, ds, dst, dstTable, ModeReplace)
	if !res.Success {
		return res
	}
	return outcome.OK("migrated %d rows from %s %s %s to %s %s %s",
		ds.Len(), src.Kind(), noun(src.Kind()), srcTable, dst.Kind(), noun(dst.Kind()), dstTable)
}
