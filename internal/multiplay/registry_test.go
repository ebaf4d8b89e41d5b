package multiplay

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_CreateOrJoin(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*RoomRegistry)
		roomID  string
		role    Role
		connID  string
		wantErr error
	}{
		{
			name:   "host creates room",
			setup:  func(r *RoomRegistry) {},
			roomID: "abc", role: RoleHost, connID: "h1",
			wantErr: nil,
		},
		{
			name: "second host rejected",
			setup: func(r *RoomRegistry) {
				require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
			},
			roomID: "abc", role: RoleHost, connID: "h2",
			wantErr: ErrRoomExists,
		},
		{
			name: "same host reconnecting under new id rejected",
			setup: func(r *RoomRegistry) {
				require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
			},
			roomID: "abc", role: RoleHost, connID: "h1-reconnect",
			wantErr: ErrRoomExists,
		},
		{
			name:   "follower without room",
			setup:  func(r *RoomRegistry) {},
			roomID: "abc", role: RoleFollower, connID: "f1",
			wantErr: ErrRoomNotFound,
		},
		{
			name: "follower joins",
			setup: func(r *RoomRegistry) {
				require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
			},
			roomID: "abc", role: RoleFollower, connID: "f1",
			wantErr: nil,
		},
		{
			name: "room full",
			setup: func(r *RoomRegistry) {
				require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
				for i := 0; i < DefaultMaxFollowers; i++ {
					require.NoError(t, r.CreateOrJoin("abc", RoleFollower, fmt.Sprintf("f%d", i)))
				}
			},
			roomID: "abc", role: RoleFollower, connID: "f-extra",
			wantErr: ErrRoomFull,
		},
		{
			name:   "unknown role",
			setup:  func(r *RoomRegistry) {},
			roomID: "abc", role: Role("spectator"), connID: "x1",
			wantErr: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRoomRegistry(DefaultMaxFollowers)
			tt.setup(r)

			err := r.CreateOrJoin(tt.roomID, tt.role, tt.connID)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoomRegistry_SingleHostInvariant(t *testing.T) {
	r := NewRoomRegistry(DefaultMaxFollowers)

	const claims = 20
	errs := make([]error, claims)
	var wg sync.WaitGroup
	for i := 0; i < claims; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.CreateOrJoin("contested", RoleHost, fmt.Sprintf("h%d", i))
		}(i)
	}
	wg.Wait()

	joined := 0
	for _, err := range errs {
		if err == nil {
			joined++
		} else {
			assert.ErrorIs(t, err, ErrRoomExists)
		}
	}
	assert.Equal(t, 1, joined, "exactly one host claim must win")
}

func TestRoomRegistry_ConcurrentFollowerCap(t *testing.T) {
	r := NewRoomRegistry(DefaultMaxFollowers)
	require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))

	const joins = 25
	errs := make([]error, joins)
	var wg sync.WaitGroup
	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.CreateOrJoin("abc", RoleFollower, fmt.Sprintf("f%d", i))
		}(i)
	}
	wg.Wait()

	joined := 0
	for _, err := range errs {
		if err == nil {
			joined++
		} else {
			assert.ErrorIs(t, err, ErrRoomFull)
		}
	}
	assert.Equal(t, DefaultMaxFollowers, joined)

	info, ok := r.RoomInfo("abc")
	require.True(t, ok)
	assert.Equal(t, DefaultMaxFollowers, info.FollowerCount)
}

func TestRoomRegistry_ForwardEvent(t *testing.T) {
	r := NewRoomRegistry(DefaultMaxFollowers)
	require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
	require.NoError(t, r.CreateOrJoin("abc", RoleFollower, "f1"))
	require.NoError(t, r.CreateOrJoin("abc", RoleFollower, "f2"))

	t.Run("room not found", func(t *testing.T) {
		_, err := r.ForwardEvent("missing", "h1")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("follower may not publish", func(t *testing.T) {
		_, err := r.ForwardEvent("abc", "f1")
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("host gets follower set", func(t *testing.T) {
		followers, err := r.ForwardEvent("abc", "h1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"f1", "f2"}, followers)
	})

	t.Run("bumps activity clock", func(t *testing.T) {
		later := time.Now().Add(time.Hour)
		r.now = func() time.Time { return later }

		_, err := r.ForwardEvent("abc", "h1")
		require.NoError(t, err)

		info, ok := r.RoomInfo("abc")
		require.True(t, ok)
		assert.Equal(t, later, info.LastActivity)
	})
}

func TestRoomRegistry_Leave(t *testing.T) {
	t.Run("follower leave shrinks room only", func(t *testing.T) {
		r := NewRoomRegistry(DefaultMaxFollowers)
		require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
		require.NoError(t, r.CreateOrJoin("abc", RoleFollower, "f1"))

		roomID, wasHost, followers := r.Leave("f1")

		assert.Equal(t, "abc", roomID)
		assert.False(t, wasHost)
		assert.Empty(t, followers)

		info, ok := r.RoomInfo("abc")
		require.True(t, ok)
		assert.Equal(t, 0, info.FollowerCount)
	})

	t.Run("host leave destroys room and clears index", func(t *testing.T) {
		r := NewRoomRegistry(DefaultMaxFollowers)
		require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))
		require.NoError(t, r.CreateOrJoin("abc", RoleFollower, "f1"))
		require.NoError(t, r.CreateOrJoin("abc", RoleFollower, "f2"))

		roomID, wasHost, followers := r.Leave("h1")

		assert.Equal(t, "abc", roomID)
		assert.True(t, wasHost)
		assert.ElementsMatch(t, []string{"f1", "f2"}, followers)

		_, ok := r.RoomInfo("abc")
		assert.False(t, ok)

		// Former followers are fully forgotten: leaving again is a no-op.
		roomID, _, _ = r.Leave("f1")
		assert.Empty(t, roomID)

		_, members := r.Stats()
		assert.Equal(t, 0, members)
	})

	t.Run("leave is idempotent", func(t *testing.T) {
		r := NewRoomRegistry(DefaultMaxFollowers)
		require.NoError(t, r.CreateOrJoin("abc", RoleHost, "h1"))

		r.Leave("h1")
		roomID, wasHost, followers := r.Leave("h1")

		assert.Empty(t, roomID)
		assert.False(t, wasHost)
		assert.Empty(t, followers)
	})
}

func TestRoomRegistry_SweepInactive(t *testing.T) {
	r := NewRoomRegistry(DefaultMaxFollowers)

	base := time.Now()
	r.now = func() time.Time { return base.Add(-31 * time.Minute) }
	require.NoError(t, r.CreateOrJoin("stale", RoleHost, "h1"))
	require.NoError(t, r.CreateOrJoin("stale", RoleFollower, "f1"))

	r.now = func() time.Time { return base.Add(-29 * time.Minute) }
	require.NoError(t, r.CreateOrJoin("fresh", RoleHost, "h2"))

	r.now = func() time.Time { return base }
	evicted := r.SweepInactive(30 * time.Minute)

	require.Len(t, evicted, 1)
	assert.Equal(t, "stale", evicted[0].RoomID)
	assert.Equal(t, "h1", evicted[0].HostID)
	assert.ElementsMatch(t, []string{"f1"}, evicted[0].Followers)

	_, ok := r.RoomInfo("stale")
	assert.False(t, ok)
	_, ok = r.RoomInfo("fresh")
	assert.True(t, ok)

	// Evicted participants leave no residual index entries.
	roomID, _, _ := r.Leave("h1")
	assert.Empty(t, roomID)
	roomID, _, _ = r.Leave("f1")
	assert.Empty(t, roomID)
}
