package db

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/KazanKK/dataferry/internal/dataset"
)

type postgresDialect struct{}

func (postgresDialect) quote(ident string) string { return pq.QuoteIdentifier(ident) }

func (postgresDialect) columnType(t dataset.Type) string {
	switch t {
	case dataset.TypeInt:
		return "BIGINT"
	case dataset.TypeFloat:
		return "DOUBLE PRECISION"
	case dataset.TypeBool:
		return "BOOLEAN"
	case dataset.TypeTime:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func (p postgresDialect) createTable(table string, columns []dataset.Column, ifMissing bool) string {
	clause := ""
	if ifMissing {
		clause = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (%s)", clause, p.quote(table), columnDefs(p, columns))
}

// insert uses COPY FROM STDIN, the same bulk path psql's \copy takes.
func (postgresDialect) insert(table string, columns []string) (string, bool) {
	return pq.CopyIn(table, columns...), true
}
