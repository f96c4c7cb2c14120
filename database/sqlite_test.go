package db

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/KazanKK/dataferry/internal/dataset"
)

// sqliteDialect lets SQLStore run against an in-memory database in tests.
type sqliteDialect struct{}

func (sqliteDialect) quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (sqliteDialect) columnType(t dataset.Type) string {
	switch t {
	case dataset.TypeInt:
		return "INTEGER"
	case dataset.TypeFloat:
		return "REAL"
	case dataset.TypeBool:
		return "BOOLEAN"
	case dataset.TypeTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (s sqliteDialect) createTable(table string, columns []dataset.Column, ifMissing bool) string {
	clause := ""
	if ifMissing {
		clause = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (%s)", clause, s.quote(table), columnDefs(s, columns))
}

func (s sqliteDialect) insert(table string, columns []string) (string, bool) {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = s.quote(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", ")), false
}

func newSQLiteStore(t *testing.T, d dialect) *SQLStore {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	store := newSQLStore(conn, KindPostgres, d, "sqlite::memory:", nil)
	t.Cleanup(func() { store.Close() })
	return store
}
