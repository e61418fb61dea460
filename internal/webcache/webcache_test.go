// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package webcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("https://api.example.org/works")
	assert.False(t, ok)

	c.Put("https://api.example.org/works", []byte(`{"results":[]}`))

	body, ok := c.Get("https://api.example.org/works")
	require.True(t, ok)
	assert.Equal(t, `{"results":[]}`, string(body))
}

func TestCacheExpiry(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), 1*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Put("https://api.example.org/works", []byte("stale"))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("https://api.example.org/works")
	assert.False(t, ok)
}

func TestCacheReplace(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	defer c.Close()

	c.Put("u", []byte("one"))
	c.Put("u", []byte("two"))

	body, ok := c.Get("u")
	require.True(t, ok)
	assert.Equal(t, "two", string(body))
}

func TestNilCacheIsInert(t *testing.T) {
	var c *Cache

	_, ok := c.Get("u")
	assert.False(t, ok)
	c.Put("u", []byte("x"))

	n, err := c.Prune()
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Close())
}

func TestPrune(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), 1*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Put("a", []byte("x"))
	c.Put("b", []byte("y"))
	time.Sleep(5 * time.Millisecond)

	n, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
