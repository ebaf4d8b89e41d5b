package multiplay

import (
	"sync"
	"time"
)

// NetworkStats is the per-connection record kept for network quality
// monitoring. RTT itself is derived client-side from the rtt_pong echo; the
// server only tracks its own observations.
type NetworkStats struct {
	ConnectedAt    time.Time `json:"connectedAt"`
	LastClientTime int64     `json:"lastClientTime"`
	SampleCount    int       `json:"sampleCount"`
}

// ConnectionRegistry tracks live connections and their ping samples. Records
// are created on connect and deleted on disconnect; they never outlive the
// connection.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	stats map[string]*NetworkStats
	now   func() time.Time
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		stats: make(map[string]*NetworkStats),
		now:   time.Now,
	}
}

func (c *ConnectionRegistry) OnConnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats[connID] = &NetworkStats{ConnectedAt: c.now()}
}

// OnPing records a client ping sample. Unknown connections are ignored.
func (c *ConnectionRegistry) OnPing(connID string, clientTimestamp int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stats[connID]
	if !ok {
		return
	}
	s.LastClientTime = clientTimestamp
	s.SampleCount++
}

func (c *ConnectionRegistry) OnDisconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stats, connID)
}

// Stats returns a copy of the connection's record.
func (c *ConnectionRegistry) Stats(connID string) (NetworkStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.stats[connID]
	if !ok {
		return NetworkStats{}, false
	}
	return *s, true
}

// Count returns the number of tracked connections.
func (c *ConnectionRegistry) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stats)
}
