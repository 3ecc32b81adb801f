package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Row{
	{Timestamp: "20240101_100000", Operator: "ana", Lot: "L1", DUTID: "D7", FieldID: "VOUT", Label: "Output", Value: "5.01", Unit: "V"},
	{Timestamp: "20240101_100000", Operator: "ana", Lot: "L1", DUTID: "D7", FieldID: "OK", Label: "OK", ComponentType: "visual", Value: "pass"},
}

func TestWriteTableFormats(t *testing.T) {
	for _, name := range []string{"run.xlsx", "run.csv", "nested/dir/RUN.CSV"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteTable(sample, path))

			got, err := ReadTable(path)
			require.NoError(t, err)
			assert.Equal(t, sample, got)
		})
	}
}

func TestWriteCSVHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, WriteTable(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Columns, ",")+"\n", string(data))
}

func TestWriteTableRejectsUnknownExtension(t *testing.T) {
	err := WriteTable(sample, filepath.Join(t.TempDir(), "run.ods"))
	assert.ErrorIs(t, err, ErrFormat)
}
