package multiplay

import "encoding/json"

// Event identifies a multiplay message kind on the wire using a custom enum
// type for better type safety.
type Event string

// Inbound events sent by clients.
const (
	EventJoinRoom      Event = "join_room"
	EventPlaybackEvent Event = "playback_event"
	EventLeaveRoom     Event = "leave_room"
	EventRTTPing       Event = "rtt_ping"
	EventRoomStatus    Event = "room_status"
)

// Outbound events sent by the server.
const (
	EventConnectionStatus   Event = "connection_status"
	EventJoinStatus         Event = "join_status"
	EventRoomInfo           Event = "room_info"
	EventSyncEvent          Event = "sync_event"
	EventPlaybackError      Event = "playback_error"
	EventLeaveStatus        Event = "leave_status"
	EventRTTPong            Event = "rtt_pong"
	EventRoomStatusResponse Event = "room_status_response"
	EventRoomClosed         Event = "room_closed"
)

// String returns the string representation of the Event
func (e Event) String() string {
	return string(e)
}

// Role is the part a connection plays in a room. A connection wishing to
// change role must leave and rejoin.
type Role string

const (
	RoleHost     Role = "host"
	RoleFollower Role = "follower"
)

// IsValid checks if the Role is one of the two known variants
func (r Role) IsValid() bool {
	return r == RoleHost || r == RoleFollower
}

// Inbound is the envelope read off a connection: an event name plus its
// payload, decoded lazily per event.
type Inbound struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outbound is the envelope written to a connection.
type Outbound struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// Payload structures for the individual message kinds.

type JoinRoomData struct {
	RoomID string `json:"roomId"`
	Role   Role   `json:"role"`
}

type JoinStatusData struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
	Role    Role   `json:"role,omitempty"`
}

type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

type LeaveStatusData struct {
	Success bool `json:"success"`
}

type RTTPingData struct {
	Timestamp int64 `json:"timestamp"`
}

type RTTPongData struct {
	Timestamp  int64 `json:"timestamp"`
	ServerTime int64 `json:"serverTime"`
}

type RoomStatusData struct {
	RoomID string `json:"roomId"`
}

type RoomStatusResponseData struct {
	Exists bool          `json:"exists"`
	Info   *RoomSnapshot `json:"info,omitempty"`
}

type RoomClosedData struct {
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

type PlaybackErrorData struct {
	Message string `json:"message"`
}

type ConnectionStatusData struct {
	Connected    bool   `json:"connected"`
	ConnectionID string `json:"connectionId"`
	Timestamp    int64  `json:"timestamp"`
}
