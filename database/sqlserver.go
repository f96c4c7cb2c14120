package db

import (
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/KazanKK/dataferry/internal/dataset"
)

type sqlserverDialect struct{}

func (sqlserverDialect) quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (sqlserverDialect) columnType(t dataset.Type) string {
	switch t {
	case dataset.TypeInt:
		return "BIGINT"
	case dataset.TypeFloat:
		return "FLOAT"
	case dataset.TypeBool:
		return "BIT"
	case dataset.TypeTime:
		return "DATETIMEOFFSET"
	default:
		return "NVARCHAR(MAX)"
	}
}

// createTable has no IF NOT EXISTS form on SQL Server, so the missing case
// is guarded with OBJECT_ID.
func (s sqlserverDialect) createTable(table string, columns []dataset.Column, ifMissing bool) string {
	create := fmt.Sprintf("CREATE TABLE %s (%s)", s.quote(table), columnDefs(s, columns))
	if !ifMissing {
		return create
	}
	name := strings.ReplaceAll(s.quote(table), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL %s", name, create)
}

// insert uses the TDS bulk load protocol.
func (s sqlserverDialect) insert(table string, columns []string) (string, bool) {
	return mssql.CopyIn(s.quote(table), mssql.BulkOptions{Tablock: true, KeepNulls: true}, columns...), true
}
