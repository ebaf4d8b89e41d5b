package multiplay

import (
	"errors"
	"sync"
	"time"
)

// Domain outcomes surfaced to the originating connection as structured
// failure messages. None of them is ever fatal to the process.
var (
	ErrRoomExists    = errors.New("room already exists with a different host")
	ErrRoomNotFound  = errors.New("room not found - check room ID or wait for host to create it")
	ErrRoomFull      = errors.New("room is full - maximum followers reached")
	ErrNotAuthorized = errors.New("only the host may publish playback events")
	ErrInvalidRole   = errors.New("role must be host or follower")
)

// DefaultMaxFollowers caps the follower set of a room.
const DefaultMaxFollowers = 10

type room struct {
	hostID       string
	followers    map[string]struct{}
	createdAt    time.Time
	lastActivity time.Time
}

// RoomSnapshot is a read-only view of a room for status queries.
type RoomSnapshot struct {
	RoomID        string    `json:"roomId"`
	HostID        string    `json:"hostId"`
	FollowerCount int       `json:"followerCount"`
	MaxFollowers  int       `json:"maxFollowers"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActivity  time.Time `json:"lastActivity"`
}

// EvictedRoom describes a room removed by SweepInactive, carrying the members
// that still need a room_closed notification.
type EvictedRoom struct {
	RoomID    string
	HostID    string
	Followers []string
}

// RoomRegistry is the single source of truth for room membership. Rooms and
// the reverse membership index (connection id -> room id) are mutated under
// one lock, so a connection is never indexed without being in a room's member
// set or vice versa.
type RoomRegistry struct {
	mu           sync.RWMutex
	rooms        map[string]*room
	membership   map[string]string
	maxFollowers int

	// now is swappable so tests can drive the activity clock.
	now func() time.Time
}

func NewRoomRegistry(maxFollowers int) *RoomRegistry {
	if maxFollowers <= 0 {
		maxFollowers = DefaultMaxFollowers
	}
	return &RoomRegistry{
		rooms:        make(map[string]*room),
		membership:   make(map[string]string),
		maxFollowers: maxFollowers,
		now:          time.Now,
	}
}

// CreateOrJoin creates the room with connID as host, or attaches connID as a
// follower. A second host claim is always rejected, even from a reconnecting
// host under a new connection id.
func (r *RoomRegistry) CreateOrJoin(roomID string, role Role, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch role {
	case RoleHost:
		if _, exists := r.rooms[roomID]; exists {
			return ErrRoomExists
		}
		now := r.now()
		r.rooms[roomID] = &room{
			hostID:       connID,
			followers:    make(map[string]struct{}),
			createdAt:    now,
			lastActivity: now,
		}

	case RoleFollower:
		rm, exists := r.rooms[roomID]
		if !exists {
			return ErrRoomNotFound
		}
		if len(rm.followers) >= r.maxFollowers {
			return ErrRoomFull
		}
		rm.followers[connID] = struct{}{}
		rm.lastActivity = r.now()

	default:
		return ErrInvalidRole
	}

	r.membership[connID] = roomID
	return nil
}

// ForwardEvent authorizes senderID as the room's host and returns the follower
// set for the caller to fan out to. Bumps the room's activity clock.
func (r *RoomRegistry) ForwardEvent(roomID, senderID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, exists := r.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}
	if rm.hostID != senderID {
		return nil, ErrNotAuthorized
	}

	rm.lastActivity = r.now()
	return followerIDs(rm), nil
}

// Leave removes connID from whatever room it is in. Idempotent: leaving while
// not a member is a no-op. When connID hosted the room, the room is destroyed
// together with every follower's index entry, and the prior follower set is
// returned so the caller can notify them.
func (r *RoomRegistry) Leave(connID string) (roomID string, wasHost bool, followers []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.membership[connID]
	if !ok {
		return "", false, nil
	}
	delete(r.membership, connID)

	rm, exists := r.rooms[roomID]
	if !exists {
		return roomID, false, nil
	}

	if rm.hostID == connID {
		followers = followerIDs(rm)
		for _, id := range followers {
			delete(r.membership, id)
		}
		delete(r.rooms, roomID)
		return roomID, true, followers
	}

	delete(rm.followers, connID)
	return roomID, false, nil
}

// RoomInfo returns a snapshot of the room for status queries.
func (r *RoomRegistry) RoomInfo(roomID string) (RoomSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, exists := r.rooms[roomID]
	if !exists {
		return RoomSnapshot{}, false
	}
	return RoomSnapshot{
		RoomID:        roomID,
		HostID:        rm.hostID,
		FollowerCount: len(rm.followers),
		MaxFollowers:  r.maxFollowers,
		CreatedAt:     rm.createdAt,
		LastActivity:  rm.lastActivity,
	}, true
}

// SweepInactive removes every room whose last activity is older than
// threshold, clearing the index entries of all its participants.
func (r *RoomRegistry) SweepInactive(threshold time.Duration) []EvictedRoom {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-threshold)
	var evicted []EvictedRoom
	for roomID, rm := range r.rooms {
		if rm.lastActivity.After(cutoff) {
			continue
		}
		delete(r.membership, rm.hostID)
		for id := range rm.followers {
			delete(r.membership, id)
		}
		evicted = append(evicted, EvictedRoom{
			RoomID:    roomID,
			HostID:    rm.hostID,
			Followers: followerIDs(rm),
		})
		delete(r.rooms, roomID)
	}
	return evicted
}

// Stats returns room and tracked member counts for monitoring.
func (r *RoomRegistry) Stats() (rooms, members int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.membership)
}

func followerIDs(rm *room) []string {
	ids := make([]string, 0, len(rm.followers))
	for id := range rm.followers {
		ids = append(ids, id)
	}
	return ids
}
