package multiplay

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultSweepInterval       = 5 * time.Minute
	DefaultInactivityThreshold = 30 * time.Minute
)

// Reaper periodically evicts rooms with no recent activity. It is the
// designed backstop for rooms leaked by missed disconnects, not merely a
// convenience.
type Reaper struct {
	rooms     *RoomRegistry
	handler   *Handler
	interval  time.Duration
	threshold time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func NewReaper(rooms *RoomRegistry, handler *Handler, interval, threshold time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if threshold <= 0 {
		threshold = DefaultInactivityThreshold
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		rooms:     rooms,
		handler:   handler,
		interval:  interval,
		threshold: threshold,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Run loops until Stop is called. Start it in its own goroutine.
func (r *Reaper) Run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.ctx.Done():
			slog.Info("multiplay: reaper shutting down")
			return
		}
	}
}

// Sweep runs a single eviction pass and returns the number of rooms evicted.
// Exposed so a sweep can be driven deterministically without the ticker.
func (r *Reaper) Sweep() int {
	evicted := r.rooms.SweepInactive(r.threshold)
	for _, ev := range evicted {
		slog.Info("multiplay: evicted inactive room", "room", ev.RoomID, "followers", len(ev.Followers))
		r.handler.RoomEvicted(ev)
	}
	return len(evicted)
}

func (r *Reaper) Stop() {
	r.cancel()
}
