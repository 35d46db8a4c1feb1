package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/recipe"
)

func TestKey(t *testing.T) {
	k := Key("https://example.com/soup")
	assert.True(t, strings.HasPrefix(k, keyPrefix))
	assert.Len(t, k, len(keyPrefix)+64)
	assert.Equal(t, k, Key("  https://example.com/soup "))
	assert.NotEqual(t, k, Key("https://example.com/stew"))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "https://example.com", &recipe.Recipe{Title: "Soup"}))
	r, ok, err := c.Get(ctx, "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, r)
	assert.NoError(t, c.Close())
}

func TestNewFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := New(ctx, "127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}
