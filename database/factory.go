package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KazanKK/dataferry/internal/outcome"
)

// DefaultPingTimeout bounds TestConnection when the caller's context has no
// deadline of its own.
const DefaultPingTimeout = 10 * time.Second

// Factory builds Stores from connection descriptors.
type Factory struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewFactory returns a Factory. A zero timeout means DefaultPingTimeout.
func NewFactory(timeout time.Duration, logger *slog.Logger) *Factory {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{Timeout: timeout, Logger: logger}
}

// Build opens a handle for kind. Opening does not touch the network; the
// first round-trip happens on Ping or the first query. An invalid
// descriptor is a validation failure, a driver that refuses the
// configuration an execution failure.
func (f *Factory) Build(ctx context.Context, kind Kind, desc ConnectionDescriptor) (Store, error) {
	if err := desc.Validate(); err != nil {
		return nil, outcome.Validation("connect", "%s: %v", kind, err)
	}

	target := desc.Redacted(kind)
	f.Logger.Debug("opening connection", "backend", kind.String(), "target", target)

	switch kind {
	case KindPostgres:
		return f.openSQL(kind, "postgres", desc, postgresDialect{}, target)
	case KindSQLServer:
		return f.openSQL(kind, "sqlserver", desc, sqlserverDialect{}, target)
	case KindMongo:
		client, err := mongo.Connect(ctx, mongoClientOptions(desc, f.Timeout))
		if err != nil {
			return nil, outcome.Execution("connect", fmt.Errorf("opening %s: %w", target, err))
		}
		return newMongoStore(client, desc.Database, target, f.Logger), nil
	default:
		return nil, outcome.Validation("connect", "unsupported backend %s", kind)
	}
}

func (f *Factory) openSQL(kind Kind, driver string, desc ConnectionDescriptor, d dialect, target string) (Store, error) {
	dsn, err := desc.DSN(kind)
	if err != nil {
		return nil, outcome.Validation("connect", "%v", err)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, outcome.Execution("connect", fmt.Errorf("opening %s: %w", target, err))
	}
	conn.SetMaxOpenConns(2)
	return newSQLStore(conn, kind, d, target, f.Logger), nil
}

// TestConnection makes the cheapest round-trip the backend offers and
// reports the driver's own message on failure.
func TestConnection(ctx context.Context, store Store) (bool, string) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()
	}
	if err := store.Ping(ctx); err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("connected to %s", store.Describe())
}
