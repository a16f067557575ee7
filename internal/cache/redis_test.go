package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A nil cache must degrade every operation to a no-op so callers never
// branch on availability.
func TestNilCacheDegradesGracefully(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest map[string]int
	hit, err := c.GetJSON(ctx, "any", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.SetJSON(ctx, "any", map[string]int{"a": 1}))
	assert.NoError(t, c.Delete(ctx, "any"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Health(ctx), "health must report the cache as absent")
}

func TestStandingsKey(t *testing.T) {
	assert.Equal(t, "standings:2025:8", StandingsKey(2025, 8))
	assert.Equal(t, "standings:2019:0", StandingsKey(2019, 0))
}
