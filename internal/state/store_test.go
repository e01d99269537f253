package state

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"o365sync/internal/structs"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLoadOrCreateClientID(t *testing.T) {
	t.Run("creates directory and guid when absent", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "o365")
		store := NewStore(dir)

		guid, err := store.LoadOrCreateClientID()
		require.NoError(t, err)

		parsed, err := uuid.Parse(guid)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.Equal(t, guid, readFile(t, filepath.Join(dir, GUIDFileName)))
	})

	t.Run("valid guid is returned unchanged and not rewritten", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, GUIDFileName)
		existing := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
		require.NoError(t, ioutil.WriteFile(path, []byte(existing), 0600))
		before, err := os.Stat(path)
		require.NoError(t, err)

		guid, err := NewStore(dir).LoadOrCreateClientID()
		require.NoError(t, err)
		assert.Equal(t, existing, guid)

		after, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, before.ModTime(), after.ModTime())
		assert.Equal(t, before.Mode(), after.Mode())
	})

	t.Run("stable across runs", func(t *testing.T) {
		store := NewStore(t.TempDir())
		first, err := store.LoadOrCreateClientID()
		require.NoError(t, err)
		second, err := store.LoadOrCreateClientID()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	for name, content := range map[string]string{
		"empty":     "\n",
		"garbage":   "not-a-guid",
		"truncated": "1b4e28ba-2fa1-11d2-883f",
	} {
		t.Run("regenerates "+name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, ioutil.WriteFile(filepath.Join(dir, GUIDFileName), []byte(content), 0644))

			guid, err := NewStore(dir).LoadOrCreateClientID()
			require.NoError(t, err)
			_, err = uuid.Parse(guid)
			require.NoError(t, err)
			assert.Equal(t, guid, readFile(t, filepath.Join(dir, GUIDFileName)))
		})
	}
}

func TestLoadLastVersion(t *testing.T) {
	cases := map[string]*string{
		"absent":     nil,
		"empty":      strPtr(""),
		"short":      strPtr("123"),
		"letters":    strPtr("abcdefghij"),
		"long":       strPtr("20240601001"),
		"with tail":  strPtr("2024060100x"),
		"whitespace": strPtr("   "),
	}
	for name, content := range cases {
		t.Run(name+" yields sentinel", func(t *testing.T) {
			dir := t.TempDir()
			if content != nil {
				require.NoError(t, ioutil.WriteFile(filepath.Join(dir, VersionFileName), []byte(*content), 0644))
			}

			version, err := NewStore(dir).LoadLastVersion()
			require.NoError(t, err)
			assert.Equal(t, structs.NeverSynced, version)
			assert.Equal(t, structs.NeverSynced, readFile(t, filepath.Join(dir, VersionFileName)))
		})
	}

	t.Run("valid version is returned", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, VersionFileName), []byte("2024060100\n"), 0644))

		version, err := NewStore(dir).LoadLastVersion()
		require.NoError(t, err)
		assert.Equal(t, "2024060100", version)
	})
}

func TestSaveLastVersion(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.SaveLastVersion("2024060100"))
	version, err := store.LoadLastVersion()
	require.NoError(t, err)
	assert.Equal(t, "2024060100", version)

	require.NoError(t, store.SaveLastVersion("2024070100"))
	version, err = store.LoadLastVersion()
	require.NoError(t, err)
	assert.Equal(t, "2024070100", version)
}

func TestValidVersion(t *testing.T) {
	assert.True(t, ValidVersion("1970010200"))
	assert.True(t, ValidVersion("2024060100"))
	assert.False(t, ValidVersion(""))
	assert.False(t, ValidVersion("202406010"))
	assert.False(t, ValidVersion("v2024060100"))
}

func TestLock(t *testing.T) {
	t.Run("second lock fails while held", func(t *testing.T) {
		store := NewStore(t.TempDir())
		release, err := store.Lock()
		require.NoError(t, err)

		// Our own pid in the file is not a foreign holder, so plant a live foreign pid.
		require.NoError(t, ioutil.WriteFile(store.lockFile, []byte(strconv.Itoa(os.Getppid())), 0644))
		_, err = store.Lock()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLocked))

		release()
		_, statErr := os.Stat(store.lockFile)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("stale lock is replaced", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, ioutil.WriteFile(store.lockFile, []byte("not-a-pid"), 0644))

		release, err := store.Lock()
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(os.Getpid()), readFile(t, store.lockFile))
		release()
	})
}

func strPtr(s string) *string {
	return &s
}
