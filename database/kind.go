package db

import (
	"fmt"
	"strings"
)

// Kind is one of the supported storage backends. The set is closed: every
// switch over Kind handles all three values.
type Kind int

const (
	KindPostgres Kind = iota + 1
	KindSQLServer
	KindMongo
)

// Kinds lists every backend in a stable order.
var Kinds = []Kind{KindPostgres, KindSQLServer, KindMongo}

func (k Kind) String() string {
	switch k {
	case KindPostgres:
		return "postgres"
	case KindSQLServer:
		return "sqlserver"
	case KindMongo:
		return "mongo"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Relational reports whether the backend speaks SQL.
func (k Kind) Relational() bool {
	return k == KindPostgres || k == KindSQLServer
}

// ParseKind maps a backend name, or a common alias of it, to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return KindPostgres, nil
	case "sqlserver", "mssql":
		return KindSQLServer, nil
	case "mongo", "mongodb":
		return KindMongo, nil
	}
	return 0, fmt.Errorf("unknown backend %q (want postgres, sqlserver or mongo)", s)
}
