package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowUnlimited(t *testing.T) {
	g := New(Policy{})

	for i := 0; i < 100; i++ {
		require.NoError(t, g.Allow("anything"))
	}
	assert.Equal(t, 100, g.Count("anything"))
}

func TestAllowMaxTotal(t *testing.T) {
	g := New(Policy{MaxTotal: 2})

	require.NoError(t, g.Allow("deploy"))
	require.NoError(t, g.Allow("deploy"))

	err := g.Allow("deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded maximum of 2 calls")

	// Limits are tracked per tool.
	assert.NoError(t, g.Allow("other"))
	assert.Equal(t, 2, g.Count("deploy"))
}

func TestAllowRateLimit(t *testing.T) {
	g := New(Policy{RatePerMinute: 3})

	// The burst matches the per-minute rate, so a fourth immediate call
	// is denied.
	require.NoError(t, g.Allow("fast"))
	require.NoError(t, g.Allow("fast"))
	require.NoError(t, g.Allow("fast"))

	err := g.Allow("fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCountUnknownTool(t *testing.T) {
	g := New(Policy{})
	assert.Equal(t, 0, g.Count("never-called"))
}
