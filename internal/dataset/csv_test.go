package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const animeCSV = `anime_id,name,rating,members,airing,aired_on
1,Cowboy Bebop,8.78,486824,false,1998-04-03
5,Trigun,NA,283069,false,1998-04-01
6,Monster,8.76,,true,N/A
`

func TestReadCSVInfersTypes(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(animeCSV))
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{"anime_id", TypeInt},
		{"name", TypeString},
		{"rating", TypeFloat},
		{"members", TypeInt},
		{"airing", TypeBool},
		{"aired_on", TypeTime},
	}, ds.Columns())
	assert.Equal(t, 3, ds.Len())
	assert.Nil(t, ds.Value(1, 2))
	assert.Nil(t, ds.Value(2, 3))
	assert.Nil(t, ds.Value(2, 5))
	assert.Equal(t, "Monster", ds.Value(2, 1))
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input", "", "no header row"},
		{"duplicate header", "a,a\n1,2\n", "duplicate column"},
		{"ragged rows", "a,b\n1,2\n3\n", "wrong number of fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCSVRoundTripKeepsTypes(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(animeCSV))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "anime.csv")
	require.NoError(t, SaveCSV(path, ds))

	back, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Columns(), back.Columns())
	assert.Equal(t, ds.Len(), back.Len())
	for r := 0; r < ds.Len(); r++ {
		assert.Equal(t, ds.Row(r), back.Row(r))
	}
}

func TestWriteCSVFloatKeepsDecimalPoint(t *testing.T) {
	ds, err := New([]string{"x", "y"}, [][]any{{1.0, "a"}, {nil, "b"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))
	assert.Equal(t, "x,y\n1.0,a\n,b\n", buf.String())
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening dataset")
}

func TestReadCSVAsUsesDeclaredTypes(t *testing.T) {
	columns := []Column{{"code", TypeString}, {"score", TypeFloat}}

	ds, err := ReadCSVAs(strings.NewReader("code,score\n007,3\n010,NA\n"), columns)
	require.NoError(t, err)
	assert.Equal(t, "007", ds.Value(0, 0))
	assert.Equal(t, 3.0, ds.Value(0, 1))
	assert.Nil(t, ds.Value(1, 1))

	_, err = ReadCSVAs(strings.NewReader("score,code\n1,2\n"), columns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected "code"`)
}

func TestExactCSVKeepsMissingApartFromText(t *testing.T) {
	columns := []Column{{Name: "label", Type: TypeString}}
	values := []any{"NA", "", nil, `\N`, `\\share`, " padded", "null"}
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	ds, err := WithTypes(columns, rows)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSVExact(&buf, ds))
	assert.Equal(t, "label\nNA\n\\\n\\N\n\\\\N\n\\\\\\share\n\" padded\"\nnull\n", buf.String())

	back, err := ReadCSVExact(&buf, columns)
	require.NoError(t, err)
	require.Equal(t, len(values), back.Len())
	for i, want := range values {
		assert.Equal(t, want, back.Value(i, 0), "row %d", i)
	}
}

func TestExactCSVTypedColumns(t *testing.T) {
	ds, err := New([]string{"id", "score", "ok"}, [][]any{{1, 2.5, true}, {2, nil, nil}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, SaveCSVExact(path, ds))
	back, err := LoadCSVExact(path, ds.Columns())
	require.NoError(t, err)

	assert.Equal(t, ds.Columns(), back.Columns())
	assert.Equal(t, []any{int64(1), 2.5, true}, back.Row(0))
	assert.Equal(t, []any{int64(2), nil, nil}, back.Row(1))
}
