package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KazanKK/dataferry/internal/dataset"
)

// dialect is the engine-specific SQL a SQLStore needs.
type dialect interface {
	quote(ident string) string
	columnType(t dataset.Type) string
	createTable(table string, columns []dataset.Column, ifMissing bool) string
	// insert returns a statement taking one row per Exec. When bulk is true
	// the statement buffers rows and needs one final argument-less Exec.
	insert(table string, columns []string) (query string, bulk bool)
}

// SQLStore is a Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	kind    Kind
	dialect dialect
	target  string
	logger  *slog.Logger
}

func newSQLStore(conn *sql.DB, kind Kind, d dialect, target string, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:      conn,
		kind:    kind,
		dialect: d,
		target:  target,
		logger:  logger.With("backend", kind.String()),
	}
}

func (s *SQLStore) log(format string, args ...interface{}) {
	s.logger.Info(fmt.Sprintf(format, args...))
}

func (s *SQLStore) logSQL(operation, sql string) {
	s.logger.Debug(operation, "sql", sql)
}

func (s *SQLStore) Kind() Kind { return s.kind }

func (s *SQLStore) Describe() string { return s.target }

func (s *SQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("no database connection")
	}
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadTable selects every row of table. Column types are inferred from the
// values the driver returns.
func (s *SQLStore) ReadTable(ctx context.Context, table string) (*dataset.Dataset, error) {
	query := fmt.Sprintf("SELECT * FROM %s", s.dialect.quote(table))
	s.logSQL(fmt.Sprintf("Read Table %s", table), query)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	var data [][]any
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make([]any, len(columns))
		for i, val := range values {
			if b, ok := val.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = val
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", table, err)
	}

	ds, err := dataset.New(columns, data)
	if err != nil {
		return nil, fmt.Errorf("building dataset from %s: %w", table, err)
	}
	s.log("Read %d rows from table %s", ds.Len(), table)
	return ds, nil
}

// ReplaceTable drops, recreates and fills table in one transaction, so a
// failed write leaves the previous contents in place.
func (s *SQLStore) ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	return s.write(ctx, table, ds, true)
}

// AppendTable creates table if it does not exist and inserts the rows.
func (s *SQLStore) AppendTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	return s.write(ctx, table, ds, false)
}

func (s *SQLStore) write(ctx context.Context, table string, ds *dataset.Dataset, replace bool) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var stmts []string
	if replace {
		stmts = append(stmts,
			fmt.Sprintf("DROP TABLE IF EXISTS %s", s.dialect.quote(table)),
			s.dialect.createTable(table, ds.Columns(), false))
	} else {
		stmts = append(stmts, s.dialect.createTable(table, ds.Columns(), true))
	}
	for _, stmt := range stmts {
		s.logSQL(fmt.Sprintf("Prepare Table %s", table), stmt)
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("preparing table %s: %w", table, err)
		}
	}

	if err = s.insertRows(ctx, tx, table, ds); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	s.log("Successfully wrote %d rows into table %s", ds.Len(), table)
	return nil
}

func (s *SQLStore) insertRows(ctx context.Context, tx *sql.Tx, table string, ds *dataset.Dataset) error {
	if ds.Len() == 0 {
		return nil
	}

	query, bulk := s.dialect.insert(table, ds.Names())
	s.logSQL(fmt.Sprintf("Insert Into %s", table), query)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	err = ds.Each(func(i int, row []any) error {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i+1, table, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if bulk {
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("flushing bulk insert into %s: %w", table, err)
		}
	}
	return nil
}

// columnDefs renders "name TYPE, ..." for a CREATE TABLE.
func columnDefs(d dialect, columns []dataset.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%s %s", d.quote(c.Name), d.columnType(c.Type))
	}
	return strings.Join(defs, ", ")
}
