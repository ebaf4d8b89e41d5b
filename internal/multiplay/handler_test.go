package multiplay

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mu     sync.Mutex
	sent   map[string][]Outbound
	failed map[string]bool
}

func newMockSender() *mockSender {
	return &mockSender{
		sent:   make(map[string][]Outbound),
		failed: make(map[string]bool),
	}
}

func (m *mockSender) Send(connID string, msg Outbound) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed[connID] {
		return ErrSendBufferFull
	}
	m.sent[connID] = append(m.sent[connID], msg)
	return nil
}

// events returns everything sent to connID with the given event name.
func (m *mockSender) events(connID string, event Event) []Outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Outbound
	for _, msg := range m.sent[connID] {
		if msg.Event == event {
			out = append(out, msg)
		}
	}
	return out
}

func newTestHandler() (*Handler, *mockSender) {
	sender := newMockSender()
	h := NewHandler(NewRoomRegistry(DefaultMaxFollowers), NewConnectionRegistry(), sender)
	return h, sender
}

func inbound(t *testing.T, event Event, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(Inbound{Event: event, Data: raw})
	require.NoError(t, err)
	return msg
}

func join(t *testing.T, h *Handler, connID, roomID string, role Role) {
	t.Helper()
	h.HandleConnect(connID)
	h.HandleMessage(connID, inbound(t, EventJoinRoom, JoinRoomData{RoomID: roomID, Role: role}))
}

func TestHandler_JoinRoom(t *testing.T) {
	tests := []struct {
		name        string
		data        any
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "host joins",
			data:        JoinRoomData{RoomID: "abc", Role: RoleHost},
			wantSuccess: true,
		},
		{
			name:        "missing roomId",
			data:        JoinRoomData{Role: RoleHost},
			wantSuccess: false,
			wantMessage: "invalid room data",
		},
		{
			name:        "missing role",
			data:        JoinRoomData{RoomID: "abc"},
			wantSuccess: false,
			wantMessage: "invalid room data",
		},
		{
			name:        "unknown role",
			data:        JoinRoomData{RoomID: "abc", Role: Role("spectator")},
			wantSuccess: false,
			wantMessage: "invalid room data",
		},
		{
			name:        "follower without room",
			data:        JoinRoomData{RoomID: "abc", Role: RoleFollower},
			wantSuccess: false,
			wantMessage: ErrRoomNotFound.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sender := newTestHandler()
			h.HandleConnect("c1")

			h.HandleMessage("c1", inbound(t, EventJoinRoom, tt.data))

			statuses := sender.events("c1", EventJoinStatus)
			require.Len(t, statuses, 1)
			status := statuses[0].Data.(JoinStatusData)
			assert.Equal(t, tt.wantSuccess, status.Success)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, status.Message)
			}

			if tt.wantSuccess {
				infos := sender.events("c1", EventRoomInfo)
				require.Len(t, infos, 1)
				info := infos[0].Data.(RoomSnapshot)
				assert.Equal(t, "c1", info.HostID)
				assert.Equal(t, DefaultMaxFollowers, info.MaxFollowers)
			} else {
				assert.Empty(t, sender.events("c1", EventRoomInfo))
			}
		})
	}
}

func TestHandler_SecondHostRejected(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "h2", "abc", RoleHost)

	statuses := sender.events("h2", EventJoinStatus)
	require.Len(t, statuses, 1)
	status := statuses[0].Data.(JoinStatusData)
	assert.False(t, status.Success)
	assert.Equal(t, ErrRoomExists.Error(), status.Message)

	// The original host is unaffected.
	info, ok := h.rooms.RoomInfo("abc")
	require.True(t, ok)
	assert.Equal(t, "h1", info.HostID)
}

func TestHandler_PlaybackFanout(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "f1", "abc", RoleFollower)
	join(t, h, "f2", "abc", RoleFollower)

	h.HandleMessage("h1", inbound(t, EventPlaybackEvent, map[string]any{
		"roomId":   "abc",
		"action":   "play",
		"position": 42,
	}))

	for _, follower := range []string{"f1", "f2"} {
		events := sender.events(follower, EventSyncEvent)
		require.Len(t, events, 1, "follower %s", follower)

		data := events[0].Data.(map[string]any)
		assert.Equal(t, "play", data["action"])
		assert.Equal(t, float64(42), data["position"])
		assert.Greater(t, data["serverReceiveTime"].(int64), int64(0))
		assert.Greater(t, data["serverForwardTime"].(int64), int64(0))
	}

	// The host gets no echo and no error.
	assert.Empty(t, sender.events("h1", EventSyncEvent))
	assert.Empty(t, sender.events("h1", EventPlaybackError))
}

func TestHandler_FollowerCannotPublish(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "f1", "abc", RoleFollower)
	join(t, h, "f2", "abc", RoleFollower)

	h.HandleMessage("f1", inbound(t, EventPlaybackEvent, map[string]any{
		"roomId": "abc",
		"action": "play",
	}))

	errs := sender.events("f1", EventPlaybackError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNotAuthorized.Error(), errs[0].Data.(PlaybackErrorData).Message)

	// Nobody receives a sync_event, the sender included.
	for _, connID := range []string{"h1", "f1", "f2"} {
		assert.Empty(t, sender.events(connID, EventSyncEvent), "conn %s", connID)
	}
}

func TestHandler_PlaybackToMissingRoom(t *testing.T) {
	h, sender := newTestHandler()
	h.HandleConnect("c1")

	h.HandleMessage("c1", inbound(t, EventPlaybackEvent, map[string]any{
		"roomId": "nowhere",
		"action": "play",
	}))

	errs := sender.events("c1", EventPlaybackError)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrRoomNotFound.Error(), errs[0].Data.(PlaybackErrorData).Message)
}

func TestHandler_UnreachableFollowerDoesNotAbortFanout(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "f1", "abc", RoleFollower)
	join(t, h, "f2", "abc", RoleFollower)
	sender.failed["f1"] = true

	h.HandleMessage("h1", inbound(t, EventPlaybackEvent, map[string]any{
		"roomId": "abc",
		"action": "pause",
	}))

	assert.Len(t, sender.events("f2", EventSyncEvent), 1)
	// The failure stays off the host's wire.
	assert.Empty(t, sender.events("h1", EventPlaybackError))
}

func TestHandler_RTTPing(t *testing.T) {
	h, sender := newTestHandler()
	h.HandleConnect("c1")

	h.HandleMessage("c1", inbound(t, EventRTTPing, RTTPingData{Timestamp: 12345}))

	pongs := sender.events("c1", EventRTTPong)
	require.Len(t, pongs, 1)
	pong := pongs[0].Data.(RTTPongData)
	assert.Equal(t, int64(12345), pong.Timestamp)
	assert.Greater(t, pong.ServerTime, int64(0))

	stats, ok := h.conns.Stats("c1")
	require.True(t, ok)
	assert.Equal(t, int64(12345), stats.LastClientTime)
	assert.Equal(t, 1, stats.SampleCount)
}

func TestHandler_RoomStatus(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	h.HandleConnect("c2")

	h.HandleMessage("c2", inbound(t, EventRoomStatus, RoomStatusData{RoomID: "abc"}))
	h.HandleMessage("c2", inbound(t, EventRoomStatus, RoomStatusData{RoomID: "missing"}))

	responses := sender.events("c2", EventRoomStatusResponse)
	require.Len(t, responses, 2)

	found := responses[0].Data.(RoomStatusResponseData)
	assert.True(t, found.Exists)
	require.NotNil(t, found.Info)
	assert.Equal(t, "h1", found.Info.HostID)

	missing := responses[1].Data.(RoomStatusResponseData)
	assert.False(t, missing.Exists)
	assert.Nil(t, missing.Info)
}

func TestHandler_LeaveRoom(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "f1", "abc", RoleFollower)

	h.HandleMessage("h1", inbound(t, EventLeaveRoom, LeaveRoomData{RoomID: "abc"}))

	closed := sender.events("f1", EventRoomClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, "Host left the room", closed[0].Data.(RoomClosedData).Reason)

	statuses := sender.events("h1", EventLeaveStatus)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Data.(LeaveStatusData).Success)

	// Second leave: still a success, no duplicate notification.
	h.HandleMessage("h1", inbound(t, EventLeaveRoom, LeaveRoomData{RoomID: "abc"}))

	assert.Len(t, sender.events("f1", EventRoomClosed), 1)
	statuses = sender.events("h1", EventLeaveStatus)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[1].Data.(LeaveStatusData).Success)
}

func TestHandler_LeaveWithoutJoinSucceeds(t *testing.T) {
	h, sender := newTestHandler()
	h.HandleConnect("c1")

	h.HandleMessage("c1", inbound(t, EventLeaveRoom, LeaveRoomData{RoomID: "abc"}))

	statuses := sender.events("c1", EventLeaveStatus)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Data.(LeaveStatusData).Success)
}

func TestHandler_HostDisconnect(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	followers := []string{"f1", "f2", "f3"}
	for _, f := range followers {
		join(t, h, f, "abc", RoleFollower)
	}

	h.HandleDisconnect("h1")

	for _, f := range followers {
		closed := sender.events(f, EventRoomClosed)
		require.Len(t, closed, 1, "follower %s", f)
		data := closed[0].Data.(RoomClosedData)
		assert.Equal(t, "Host disconnected", data.Reason)
		assert.Greater(t, data.Timestamp, int64(0))
	}

	_, ok := h.rooms.RoomInfo("abc")
	assert.False(t, ok)
	_, members := h.rooms.Stats()
	assert.Equal(t, 0, members)

	_, ok = h.conns.Stats("h1")
	assert.False(t, ok, "disconnected connection keeps no stats record")
}

func TestHandler_FollowerDisconnect(t *testing.T) {
	h, sender := newTestHandler()
	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "f1", "abc", RoleFollower)
	join(t, h, "f2", "abc", RoleFollower)

	h.HandleDisconnect("f1")

	// The room survives and nobody is told the room closed.
	info, ok := h.rooms.RoomInfo("abc")
	require.True(t, ok)
	assert.Equal(t, 1, info.FollowerCount)
	assert.Empty(t, sender.events("h1", EventRoomClosed))
	assert.Empty(t, sender.events("f2", EventRoomClosed))
}

// Full happy-path walk: host creates, follower joins, playback syncs, host
// disconnect closes the room.
func TestHandler_SessionScenario(t *testing.T) {
	h, sender := newTestHandler()

	join(t, h, "H", "abc", RoleHost)
	statuses := sender.events("H", EventJoinStatus)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Data.(JoinStatusData).Success)
	assert.Equal(t, RoleHost, statuses[0].Data.(JoinStatusData).Role)

	join(t, h, "F1", "abc", RoleFollower)
	statuses = sender.events("F1", EventJoinStatus)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Data.(JoinStatusData).Success)
	assert.Equal(t, RoleFollower, statuses[0].Data.(JoinStatusData).Role)

	h.HandleMessage("H", inbound(t, EventPlaybackEvent, map[string]any{
		"roomId":   "abc",
		"action":   "play",
		"position": 42,
	}))

	events := sender.events("F1", EventSyncEvent)
	require.Len(t, events, 1)
	data := events[0].Data.(map[string]any)
	assert.Equal(t, "play", data["action"])
	assert.Equal(t, float64(42), data["position"])
	assert.Greater(t, data["serverForwardTime"].(int64), int64(0))

	h.HandleDisconnect("H")

	closed := sender.events("F1", EventRoomClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, "Host disconnected", closed[0].Data.(RoomClosedData).Reason)

	h.HandleConnect("C")
	h.HandleMessage("C", inbound(t, EventRoomStatus, RoomStatusData{RoomID: "abc"}))
	responses := sender.events("C", EventRoomStatusResponse)
	require.Len(t, responses, 1)
	assert.False(t, responses[0].Data.(RoomStatusResponseData).Exists)
}

func TestHandler_ActivityPublishing(t *testing.T) {
	h, _ := newTestHandler()
	var mu sync.Mutex
	var published []Activity
	h.SetActivityPublisher(activityFunc(func(a Activity) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, a)
	}))

	join(t, h, "h1", "abc", RoleHost)
	join(t, h, "f1", "abc", RoleFollower)
	h.HandleDisconnect("h1")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, published, 2)
	assert.Equal(t, "room_created", published[0].Type)
	assert.Equal(t, "room_closed", published[1].Type)
	assert.Equal(t, 1, published[1].Followers)
}

type activityFunc func(Activity)

func (f activityFunc) PublishActivity(a Activity) { f(a) }
