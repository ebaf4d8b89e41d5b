package multiplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRegistry_Lifecycle(t *testing.T) {
	c := NewConnectionRegistry()

	c.OnConnect("c1")
	require.Equal(t, 1, c.Count())

	stats, ok := c.Stats("c1")
	require.True(t, ok)
	assert.False(t, stats.ConnectedAt.IsZero())
	assert.Equal(t, 0, stats.SampleCount)

	c.OnPing("c1", 1000)
	c.OnPing("c1", 2000)

	stats, ok = c.Stats("c1")
	require.True(t, ok)
	assert.Equal(t, int64(2000), stats.LastClientTime)
	assert.Equal(t, 2, stats.SampleCount)

	c.OnDisconnect("c1")
	_, ok = c.Stats("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Count())
}

func TestConnectionRegistry_PingUnknownConnection(t *testing.T) {
	c := NewConnectionRegistry()

	// Must not create a record for a connection that never connected.
	c.OnPing("ghost", 1000)

	_, ok := c.Stats("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Count())
}

func TestConnectionRegistry_DisconnectIsIdempotent(t *testing.T) {
	c := NewConnectionRegistry()
	c.OnConnect("c1")

	c.OnDisconnect("c1")
	c.OnDisconnect("c1")

	assert.Equal(t, 0, c.Count())
}
