package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/KazanKK/dataferry/internal/dataset"
)

// Store is an open handle on one backend. A Store is owned by the operation
// that built it and is closed when that operation ends.
type Store interface {
	Kind() Kind
	// Describe names the endpoint without secrets, for messages and logs.
	Describe() string
	Ping(ctx context.Context) error
	// ReadTable loads a whole table or collection.
	ReadTable(ctx context.Context, table string) (*dataset.Dataset, error)
	// ReplaceTable drops table if present and recreates it from ds.
	ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) error
	// AppendTable creates table when missing and inserts the rows of ds.
	AppendTable(ctx context.Context, table string, ds *dataset.Dataset) error
	Close() error
}

// ValidateTableName rejects names that cannot be used safely as a table or
// collection identifier for kind. Relational names are limited to ASCII
// letters, digits and underscore and must not start with a digit.
func ValidateTableName(kind Kind, name string) error {
	if name == "" {
		return fmt.Errorf("table name is empty")
	}
	switch kind {
	case KindPostgres, KindSQLServer:
		if len(name) > 128 {
			return fmt.Errorf("table name %q is longer than 128 characters", name)
		}
		for i, r := range name {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return fmt.Errorf("table name %q may only contain letters, digits and underscores", name)
			}
		}
		return nil
	case KindMongo:
		if strings.ContainsAny(name, "$\x00") {
			return fmt.Errorf("collection name %q may not contain '$' or NUL", name)
		}
		if strings.HasPrefix(name, "system.") {
			return fmt.Errorf("collection name %q uses the reserved system. prefix", name)
		}
		return nil
	default:
		return fmt.Errorf("unsupported backend %s", kind)
	}
}
