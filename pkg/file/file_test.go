package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJsonFile_CreatesParentAndReplaces(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, fs.WriteJsonFile(path, map[string]string{"a": "1"}))
	require.NoError(t, fs.WriteJsonFile(path, map[string]string{"b": "2"}))

	var got map[string]string
	require.NoError(t, fs.ReadJsonFile(path, &got))
	assert.Equal(t, map[string]string{"b": "2"}, got)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not be left behind")
}

func TestWriteJsonFile_UnencodableLeavesTarget(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, fs.WriteJsonFile(path, []int{1}))

	err := fs.WriteJsonFile(path, map[string]any{"bad": make(chan int)})

	require.Error(t, err)
	raw, err := fs.ReadFileRaw(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[1]", string(raw))
}

func TestReadYamlFile(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: geotrack\nzoom: 13\n"), 0o644))

	var got struct {
		Name string `yaml:"name"`
		Zoom int    `yaml:"zoom"`
	}
	require.NoError(t, fs.ReadYamlFile(path, &got))

	assert.Equal(t, "geotrack", got.Name)
	assert.Equal(t, 13, got.Zoom)
}

func TestReadMissingFile(t *testing.T) {
	fs := NewFileService()
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := fs.ReadFileRaw(missing)
	assert.True(t, os.IsNotExist(err))
	assert.True(t, os.IsNotExist(fs.ReadJsonFile(missing, &struct{}{})))
}
