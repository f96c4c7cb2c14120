package db

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KazanKK/dataferry/internal/dataset"
)

var animeColumns = []dataset.Column{
	{Name: "anime_id", Type: dataset.TypeInt},
	{Name: "rating", Type: dataset.TypeFloat},
	{Name: "airing", Type: dataset.TypeBool},
	{Name: "aired_on", Type: dataset.TypeTime},
	{Name: "name", Type: dataset.TypeString},
}

func TestDialectColumnTypes(t *testing.T) {
	tests := []struct {
		typ       dataset.Type
		postgres  string
		sqlserver string
	}{
		{dataset.TypeInt, "BIGINT", "BIGINT"},
		{dataset.TypeFloat, "DOUBLE PRECISION", "FLOAT"},
		{dataset.TypeBool, "BOOLEAN", "BIT"},
		{dataset.TypeTime, "TIMESTAMPTZ", "DATETIMEOFFSET"},
		{dataset.TypeString, "TEXT", "NVARCHAR(MAX)"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.postgres, postgresDialect{}.columnType(tt.typ))
			assert.Equal(t, tt.sqlserver, sqlserverDialect{}.columnType(tt.typ))
		})
	}
}

func TestDialectQuote(t *testing.T) {
	tests := []struct {
		ident     string
		postgres  string
		sqlserver string
	}{
		{"anime_list", `"anime_list"`, "[anime_list]"},
		{`odd"name`, `"odd""name"`, `[odd"name]`},
		{"odd]name", `"odd]name"`, "[odd]]name]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.postgres, postgresDialect{}.quote(tt.ident), tt.ident)
		assert.Equal(t, tt.sqlserver, sqlserverDialect{}.quote(tt.ident), tt.ident)
	}
}

func TestPostgresCreateTable(t *testing.T) {
	d := postgresDialect{}
	cols := `"anime_id" BIGINT, "rating" DOUBLE PRECISION, "airing" BOOLEAN, "aired_on" TIMESTAMPTZ, "name" TEXT`

	assert.Equal(t, `CREATE TABLE "anime_list" (`+cols+`)`, d.createTable("anime_list", animeColumns, false))
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "anime_list" (`+cols+`)`, d.createTable("anime_list", animeColumns, true))
}

func TestSQLServerCreateTable(t *testing.T) {
	d := sqlserverDialect{}
	cols := "[anime_id] BIGINT, [rating] FLOAT, [airing] BIT, [aired_on] DATETIMEOFFSET, [name] NVARCHAR(MAX)"

	assert.Equal(t, "CREATE TABLE [anime_list] ("+cols+")", d.createTable("anime_list", animeColumns, false))
	assert.Equal(t,
		"IF OBJECT_ID(N'[anime_list]', N'U') IS NULL CREATE TABLE [anime_list] ("+cols+")",
		d.createTable("anime_list", animeColumns, true))
	assert.Equal(t,
		"IF OBJECT_ID(N'[it''s]', N'U') IS NULL CREATE TABLE [it's] ([x] BIT)",
		d.createTable("it's", []dataset.Column{{Name: "x", Type: dataset.TypeBool}}, true))
}

func TestPostgresInsertUsesCopy(t *testing.T) {
	query, bulk := postgresDialect{}.insert("anime_list", []string{"anime_id", "name"})

	assert.True(t, bulk)
	assert.Equal(t, `COPY "anime_list" ("anime_id", "name") FROM STDIN`, query)
}

func TestSQLServerInsertUsesBulkCopy(t *testing.T) {
	query, bulk := sqlserverDialect{}.insert("anime_list", []string{"anime_id", "name"})

	assert.True(t, bulk)
	require.True(t, strings.HasPrefix(query, "INSERTBULK "), query)

	var cfg struct {
		TableName   string
		ColumnsName []string
		Options     struct {
			Tablock   bool
			KeepNulls bool
		}
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(query, "INSERTBULK ")), &cfg))
	assert.Equal(t, "[anime_list]", cfg.TableName)
	assert.Equal(t, []string{"anime_id", "name"}, cfg.ColumnsName)
	assert.True(t, cfg.Options.Tablock)
	assert.True(t, cfg.Options.KeepNulls)
}
