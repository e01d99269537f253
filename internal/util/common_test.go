package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirIfNotExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	created, err := CreateDirIfNotExist(dir)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = CreateDirIfNotExist(dir)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "version.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("2024060100"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("2024060200"), 0644))

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024060200", string(data))

	// No temp files are left behind.
	entries, err := ioutil.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadFirstLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guid.txt")

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFirstLine(path)
		require.Error(t, err)
	})

	t.Run("first line trimmed", func(t *testing.T) {
		require.NoError(t, ioutil.WriteFile(path, []byte("  abc \nsecond\n"), 0644))
		line, err := ReadFirstLine(path)
		require.NoError(t, err)
		assert.Equal(t, "abc", line)
	})

	t.Run("empty file", func(t *testing.T) {
		require.NoError(t, ioutil.WriteFile(path, nil, 0644))
		line, err := ReadFirstLine(path)
		require.NoError(t, err)
		assert.Equal(t, "", line)
	})

	_ = os.Remove(path)
}
