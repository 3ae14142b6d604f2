package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/domain/table"
	"statlab/internal/errors"
)

func TestLoad_ParsesSimpleCSV(t *testing.T) {
	content := []byte("a,b,city\n1,2,Lagos\n2,4,Osaka\n3,6,Lima\n")

	tbl, err := Load(content)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.FieldCount())
	require.Equal(t, 3, tbl.RowCount())

	assert.Equal(t, table.TypeNumeric, tbl.Fields[0].DataType)
	assert.Equal(t, table.TypeNumeric, tbl.Fields[1].DataType)
	assert.Equal(t, table.TypeText, tbl.Fields[2].DataType)
}

func TestLoad_BinaryContentIsLoadFailure(t *testing.T) {
	content := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x1a, 0x0a}

	_, err := Load(content)
	require.Error(t, err)
	assert.Equal(t, errors.CodeLoadFailure, errors.GetCode(err))
}

func TestLoad_InvalidUTF8IsLoadFailure(t *testing.T) {
	_, err := Load([]byte{'a', ',', 'b', '\n', 0xff, 0xfe, ',', '1'})
	require.Error(t, err)
	assert.Equal(t, errors.CodeLoadFailure, errors.GetCode(err))
}

func TestLoad_RaggedRowsAreLoadFailure(t *testing.T) {
	_, err := Load([]byte("a,b\n1,2\n3\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeLoadFailure, errors.GetCode(err))
}

func TestLoad_HeaderOnlyIsEmptyDataset(t *testing.T) {
	_, err := Load([]byte("a,b,c\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyDataset, errors.GetCode(err))
}

func TestLoad_NoBytesIsEmptyDataset(t *testing.T) {
	_, err := Load([]byte(""))
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyDataset, errors.GetCode(err))
}

func TestLoad_CountsMissingAndUnique(t *testing.T) {
	tbl, err := Load([]byte("v\n5\n\n5\n7\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.Fields[0].MissingCount)
	assert.Equal(t, 2, tbl.Fields[0].UniqueCount)
}

func TestInferDataType(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   table.DataType
	}{
		{"integers", []string{"1", "2", "3"}, table.TypeNumeric},
		{"floats", []string{"1.5", "-2.25", "3e2"}, table.TypeNumeric},
		{"zero one is numeric not boolean", []string{"0", "1", "0"}, table.TypeNumeric},
		{"mixed number and label is text", []string{"1", "low", "3"}, table.TypeText},
		{"booleans", []string{"yes", "no", "yes"}, table.TypeBoolean},
		{"iso dates", []string{"2024-01-02", "2024-03-04"}, table.TypeDate},
		{"all missing", []string{"", ""}, table.TypeText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([][]string, len(tc.values))
			for i, v := range tc.values {
				rows[i] = []string{v}
			}
			assert.Equal(t, tc.want, inferDataType(rows, 0))
		})
	}
}
