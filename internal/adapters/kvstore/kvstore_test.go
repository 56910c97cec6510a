package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"))
	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestOpenGarbageStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := Open(path)
	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestSetGetDeleteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.json")

	s := Open(path)
	require.NoError(t, s.Set("k1", "v1"))
	require.NoError(t, s.Set("k2", `{"json":"payload"}`))

	v, ok := s.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	// A fresh open sees the flushed data.
	s2 := Open(path)
	v, ok = s2.Get("k2")
	require.True(t, ok)
	assert.Equal(t, `{"json":"payload"}`, v)

	require.NoError(t, s2.Delete("k1"))
	_, ok = Open(path).Get("k1")
	assert.False(t, ok)
}

func TestSetOverwrites(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, s.Set("k", "old"))
	require.NoError(t, s.Set("k", "new"))

	v, _ := s.Get("k")
	assert.Equal(t, "new", v)
}
