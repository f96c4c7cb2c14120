package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInfersColumnTypes(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ds, err := New(
		[]string{"id", "score", "mixed", "flag", "seen", "empty", "label"},
		[][]any{
			{1, 1.5, 1, true, ts, nil, "a"},
			{int32(2), 2, "two", false, ts, nil, []byte("b")},
			{uint8(3), nil, 3.5, nil, nil, nil, nil},
		},
	)
	require.NoError(t, err)

	want := []Column{
		{"id", TypeInt},
		{"score", TypeFloat},
		{"mixed", TypeString},
		{"flag", TypeBool},
		{"seen", TypeTime},
		{"empty", TypeString},
		{"label", TypeString},
	}
	assert.Equal(t, want, ds.Columns())
	assert.Equal(t, int64(2), ds.Value(1, 0))
	assert.Equal(t, 2.0, ds.Value(1, 1))
	assert.Equal(t, "1", ds.Value(0, 2))
	assert.Equal(t, "3.5", ds.Value(2, 2))
	assert.Equal(t, "b", ds.Value(1, 6))
	assert.Nil(t, ds.Value(2, 1))
}

func TestNewRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		rows  [][]any
		want  string
	}{
		{"duplicate column", []string{"a", "a"}, nil, "duplicate column"},
		{"empty column name", []string{"a", " "}, nil, "empty name"},
		{"short row", []string{"a", "b"}, [][]any{{1}}, "row 1 has 1 values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.names, tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWithTypesCoercesText(t *testing.T) {
	ds, err := WithTypes(
		[]Column{{"n", TypeInt}, {"f", TypeFloat}, {"at", TypeTime}},
		[][]any{{"42", "3", "2024-01-02"}, {"NULL", 2, nil}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ds.Value(0, 0))
	assert.Equal(t, 3.0, ds.Value(0, 1))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ds.Value(0, 2))
	assert.Nil(t, ds.Value(1, 0))
	assert.Equal(t, 2.0, ds.Value(1, 1))

	_, err = WithTypes([]Column{{"n", TypeInt}}, [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 column n")
}

func TestAccessorsReturnCopies(t *testing.T) {
	ds, err := New([]string{"a", "b"}, [][]any{{1, "x"}})
	require.NoError(t, err)

	row := ds.Row(0)
	row[0] = int64(99)
	cols := ds.Columns()
	cols[0].Name = "z"

	assert.Equal(t, int64(1), ds.Value(0, 0))
	assert.Equal(t, []string{"a", "b"}, ds.Names())
	assert.Equal(t, 1, ds.Index("b"))
	assert.Equal(t, -1, ds.Index("missing"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "7", FormatValue(7))
	assert.Equal(t, "2.0", FormatValue(2.0))
	assert.Equal(t, "0.25", FormatValue(0.25))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "2024-01-02T03:04:05Z", FormatValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}
