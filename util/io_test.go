package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonSimpleTest struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Height float32 `json:"height"`
}

func TestJSONWriteCreatesDirectories(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "dir", "simple.json")

	err := WriteJSONToFile(jsonSimpleTest{"John", 30, 170.5}, file)
	require.NoError(t, err)
	assert.True(t, FileExists(file))

	row, err := ReadJSONFromFile[jsonSimpleTest](file)
	require.NoError(t, err)
	assert.Equal(t, "John", row.Name)
	assert.Equal(t, 30, row.Age)
	assert.InDelta(t, 170.5, row.Height, 1e-6)
}

func TestJSONReadMissingFile(t *testing.T) {
	_, err := ReadJSONFromFile[jsonSimpleTest](filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "util: read")
}

func TestJSONReadMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, WriteBytesToFile([]byte(`{"name": `), file))

	_, err := ReadJSONFromFile[jsonSimpleTest](file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "util: decode")
}
