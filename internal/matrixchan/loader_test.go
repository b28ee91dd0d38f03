package matrixchan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMatrix_ConstantPairs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.txt", "0 1 : 30\n1 0 : 40\n")

	m := NewMatrix(2, 60, 0)
	require.NoError(t, m.Load(path))

	assert.Equal(t, 30.0, m.Attenuation(0, 1, 0))
	assert.Equal(t, 40.0, m.Attenuation(1, 0, 1_000_000))
}

func TestMatrix_UndefinedPairsGetDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.txt", "0 1 : 30\n")

	m := NewMatrix(3, 60, 5)
	require.NoError(t, m.Load(path))

	assert.Equal(t, 35.0, m.Attenuation(0, 1, 0))
	assert.Equal(t, 65.0, m.Attenuation(1, 0, 0)) // 60 default + 5 atxtra
	assert.Equal(t, 65.0, m.Attenuation(2, 0, 0))
}

func TestMatrix_OutOfRangePairDropped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.txt", "0 5 : 30\n0 1 : 20\n")

	m := NewMatrix(2, 60, 0)
	require.NoError(t, m.Load(path))
	assert.Equal(t, 20.0, m.Attenuation(0, 1, 0))
}

func TestMatrix_RedefinitionLaterWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.txt", "0 1 : 30\n0 1 : 99\n")

	m := NewMatrix(2, 60, 0)
	require.NoError(t, m.Load(path))
	assert.Equal(t, 99.0, m.Attenuation(0, 1, 0))
}

func TestMatrix_CorruptRecordFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.txt", "not a valid record\n")

	m := NewMatrix(2, 60, 0)
	err := m.Load(path)
	require.Error(t, err)
}

func TestMatrix_TraceFilePair(t *testing.T) {
	dir := t.TempDir()
	tracePath := writeFile(t, dir, "trace.txt", "100 20\n200 40\n")
	matrixPath := writeFile(t, dir, "matrix.txt", `0 1 : "`+tracePath+`"`+"\n")

	m := NewMatrix(2, 60, 0)
	require.NoError(t, m.Load(matrixPath))

	assert.Equal(t, 20.0, m.Attenuation(0, 1, 100))
	assert.Equal(t, 30.0, m.Attenuation(0, 1, 150))
	assert.Equal(t, 40.0, m.Attenuation(0, 1, 200))
	assert.Equal(t, 40.0, m.Attenuation(0, 1, 250))
}

func TestMatrix_FillUndefinedWithoutFile(t *testing.T) {
	m := NewMatrix(2, 60, 0)
	m.FillUndefined()
	assert.Equal(t, 60.0, m.Attenuation(0, 1, 0))
	assert.Equal(t, 60.0, m.Attenuation(1, 0, 0))
}
