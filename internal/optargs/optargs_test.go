package optargs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(att, atxtra *float64, matrixFile *string) Table {
	var table Table
	table.Float("att", att, -100, 100)
	table.Float("atxtra", atxtra, -100, 100)
	table.String("att_matrix_file", matrixFile)
	return table
}

func TestTable_ParseArgvEqualsForm(t *testing.T) {
	att, atxtra, file := 60.0, 0.0, ""
	table := newTestTable(&att, &atxtra, &file)

	require.NoError(t, table.Load([]string{"-att=30", "-atxtra=5"}))
	assert.Equal(t, 30.0, att)
	assert.Equal(t, 5.0, atxtra)
}

func TestTable_ParseArgvSpaceForm(t *testing.T) {
	att, atxtra, file := 60.0, 0.0, ""
	table := newTestTable(&att, &atxtra, &file)

	require.NoError(t, table.Load([]string{"-att", "30"}))
	assert.Equal(t, 30.0, att)
}

func TestTable_LeftToRightOverride(t *testing.T) {
	att, atxtra, file := 60.0, 0.0, ""
	table := newTestTable(&att, &atxtra, &file)

	require.NoError(t, table.Load([]string{"-att=30", "-att=45"}))
	assert.Equal(t, 45.0, att)
}

func TestTable_OutOfRangeRejected(t *testing.T) {
	att, atxtra, file := 60.0, 0.0, ""
	table := newTestTable(&att, &atxtra, &file)

	err := table.Load([]string{"-att=500"})
	assert.Error(t, err)
}

func TestTable_UnknownOptionIgnored(t *testing.T) {
	att, atxtra, file := 60.0, 0.0, ""
	table := newTestTable(&att, &atxtra, &file)

	require.NoError(t, table.Load([]string{"-unrelated=1", "-att=10"}))
	assert.Equal(t, 10.0, att)
}

func TestTable_YAMLConfigFile(t *testing.T) {
	att, atxtra, file := 60.0, 0.0, ""
	table := newTestTable(&att, &atxtra, &file)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("att: 42\natxtra: 1\n"), 0o644))

	require.NoError(t, table.Load([]string{"-config=" + path}))
	assert.Equal(t, 42.0, att)
	assert.Equal(t, 1.0, atxtra)
}
