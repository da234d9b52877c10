package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCachePutGet(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	require.NoError(t, c.Put("submissions-0000320193.json", []byte("payload")))

	data, ok := c.Get("submissions-0000320193.json")
	require.True(t, ok)
	assert.Equal(t, "payload", string(data))

	_, ok = c.Get("missing-key")
	assert.False(t, ok)
}

func TestFileCacheExpiry(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Nanosecond)
	require.NoError(t, c.Put("k", []byte("old")))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok, "expired entry must not be served as fresh")

	data, ok := c.GetStale("k")
	require.True(t, ok, "expired entry must still be reachable as stale")
	assert.Equal(t, "old", string(data))
}

func TestFileCacheKeySanitization(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	require.NoError(t, c.Put("a/b:c.json", []byte("x")))
	data, ok := c.Get("a/b:c.json")
	require.True(t, ok)
	assert.Equal(t, "x", string(data))
}
