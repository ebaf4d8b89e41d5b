package multiplay

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Sender delivers an outbound event to a single connection. Implementations
// must not block: delivery is best-effort and a failed send to one connection
// must not affect any other.
type Sender interface {
	Send(connID string, msg Outbound) error
}

// Activity is a room lifecycle record published for analytics.
type Activity struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	HostID    string `json:"hostId"`
	Followers int    `json:"followers"`
	Timestamp int64  `json:"timestamp"`
}

// ActivityPublisher receives room lifecycle records. Publishing must not
// block the relay path.
type ActivityPublisher interface {
	PublishActivity(Activity)
}

// Handler is the message-level state machine between connections and the
// registries. It validates inbound events, delegates to the room registry,
// and fans resulting events out through the sender. The registry is the
// authoritative source for membership and authorization; the handler keeps no
// room state of its own.
type Handler struct {
	rooms  *RoomRegistry
	conns  *ConnectionRegistry
	sender Sender
	events ActivityPublisher
	now    func() time.Time
}

func NewHandler(rooms *RoomRegistry, conns *ConnectionRegistry, sender Sender) *Handler {
	return &Handler{
		rooms:  rooms,
		conns:  conns,
		sender: sender,
		now:    time.Now,
	}
}

// SetActivityPublisher attaches an optional analytics sink.
func (h *Handler) SetActivityPublisher(p ActivityPublisher) {
	h.events = p
}

// HandleConnect registers the connection's stats record and confirms the
// connection to the client.
func (h *Handler) HandleConnect(connID string) {
	h.conns.OnConnect(connID)
	h.send(connID, Outbound{Event: EventConnectionStatus, Data: ConnectionStatusData{
		Connected:    true,
		ConnectionID: connID,
		Timestamp:    h.now().UnixMilli(),
	}})
	slog.Info("multiplay: connection established", "connId", connID)
}

// HandleDisconnect is the transport-level disconnect path: the connection's
// stats are discarded and its room membership is torn down, notifying
// followers when the departing connection hosted a room.
func (h *Handler) HandleDisconnect(connID string) {
	h.conns.OnDisconnect(connID)
	h.leave(connID, "Host disconnected")
	slog.Info("multiplay: connection closed", "connId", connID)
}

// HandleMessage dispatches one inbound message. Invocations for the same
// connection arrive in order; the handler introduces no reordering.
func (h *Handler) HandleMessage(connID string, raw []byte) {
	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Warn("multiplay: invalid message", "connId", connID, "error", err)
		return
	}

	switch msg.Event {
	case EventJoinRoom:
		h.handleJoin(connID, msg.Data)
	case EventPlaybackEvent:
		h.handlePlayback(connID, msg.Data)
	case EventLeaveRoom:
		h.handleLeave(connID)
	case EventRTTPing:
		h.handlePing(connID, msg.Data)
	case EventRoomStatus:
		h.handleRoomStatus(connID, msg.Data)
	default:
		slog.Warn("multiplay: unknown event", "connId", connID, "event", msg.Event)
	}
}

func (h *Handler) handleJoin(connID string, raw json.RawMessage) {
	var data JoinRoomData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" || !data.Role.IsValid() {
		// Malformed joins are rejected locally, without registry contact.
		h.send(connID, Outbound{Event: EventJoinStatus, Data: JoinStatusData{
			Success: false,
			Message: "invalid room data",
		}})
		return
	}

	if err := h.rooms.CreateOrJoin(data.RoomID, data.Role, connID); err != nil {
		h.send(connID, Outbound{Event: EventJoinStatus, Data: JoinStatusData{
			Success: false,
			Message: err.Error(),
			RoomID:  data.RoomID,
			Role:    data.Role,
		}})
		return
	}

	h.send(connID, Outbound{Event: EventJoinStatus, Data: JoinStatusData{
		Success: true,
		RoomID:  data.RoomID,
		Role:    data.Role,
	}})
	if info, ok := h.rooms.RoomInfo(data.RoomID); ok {
		h.send(connID, Outbound{Event: EventRoomInfo, Data: info})
	}

	if data.Role == RoleHost {
		h.publish("room_created", data.RoomID, connID, 0)
	}
	slog.Info("multiplay: joined room", "connId", connID, "room", data.RoomID, "role", data.Role)
}

func (h *Handler) handlePlayback(connID string, raw json.RawMessage) {
	received := h.now().UnixMilli()

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.send(connID, Outbound{Event: EventPlaybackError, Data: PlaybackErrorData{Message: "invalid playback payload"}})
		return
	}
	roomID, _ := payload["roomId"].(string)
	if roomID == "" {
		h.send(connID, Outbound{Event: EventPlaybackError, Data: PlaybackErrorData{Message: "roomId is required"}})
		return
	}

	followers, err := h.rooms.ForwardEvent(roomID, connID)
	if err != nil {
		// Failures go to the sender only, never to followers.
		h.send(connID, Outbound{Event: EventPlaybackError, Data: PlaybackErrorData{Message: err.Error()}})
		return
	}

	forward := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		forward[k] = v
	}
	forward["serverReceiveTime"] = received
	forward["serverForwardTime"] = h.now().UnixMilli()

	out := Outbound{Event: EventSyncEvent, Data: forward}
	for _, id := range followers {
		// Per-follower send failures are swallowed; a slow or unreachable
		// follower must not delay the rest of the fan-out.
		if err := h.sender.Send(id, out); err != nil {
			slog.Debug("multiplay: dropped sync_event", "connId", id, "room", roomID, "error", err)
		}
	}
	slog.Debug("multiplay: forwarded playback event", "connId", connID, "room", roomID, "followers", len(followers))
}

func (h *Handler) handleLeave(connID string) {
	h.leave(connID, "Host left the room")
	// Leaving a room one is not in is a no-op success.
	h.send(connID, Outbound{Event: EventLeaveStatus, Data: LeaveStatusData{Success: true}})
}

func (h *Handler) handlePing(connID string, raw json.RawMessage) {
	var data RTTPingData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}
	h.conns.OnPing(connID, data.Timestamp)
	h.send(connID, Outbound{Event: EventRTTPong, Data: RTTPongData{
		Timestamp:  data.Timestamp,
		ServerTime: h.now().UnixMilli(),
	}})
}

func (h *Handler) handleRoomStatus(connID string, raw json.RawMessage) {
	var data RoomStatusData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	resp := RoomStatusResponseData{}
	if info, ok := h.rooms.RoomInfo(data.RoomID); ok {
		resp.Exists = true
		resp.Info = &info
	}
	h.send(connID, Outbound{Event: EventRoomStatusResponse, Data: resp})
}

// RoomEvicted notifies the followers of a reaped room. Called by the reaper.
func (h *Handler) RoomEvicted(ev EvictedRoom) {
	h.notifyClosed(ev.Followers, "inactive")
	h.publish("room_reaped", ev.RoomID, ev.HostID, len(ev.Followers))
}

// leave removes connID from its room. When connID hosted the room, every
// prior follower receives a room_closed with the given reason.
func (h *Handler) leave(connID, reason string) {
	roomID, wasHost, followers := h.rooms.Leave(connID)
	if roomID == "" {
		return
	}
	if wasHost {
		h.notifyClosed(followers, reason)
		h.publish("room_closed", roomID, connID, len(followers))
		slog.Info("multiplay: room destroyed", "room", roomID, "hostId", connID, "followers", len(followers))
	}
}

func (h *Handler) notifyClosed(followers []string, reason string) {
	out := Outbound{Event: EventRoomClosed, Data: RoomClosedData{
		Reason:    reason,
		Timestamp: h.now().UnixMilli(),
	}}
	for _, id := range followers {
		if err := h.sender.Send(id, out); err != nil {
			slog.Debug("multiplay: dropped room_closed", "connId", id, "error", err)
		}
	}
}

func (h *Handler) publish(eventType, roomID, hostID string, followers int) {
	if h.events == nil {
		return
	}
	h.events.PublishActivity(Activity{
		Type:      eventType,
		RoomID:    roomID,
		HostID:    hostID,
		Followers: followers,
		Timestamp: h.now().UnixMilli(),
	})
}

func (h *Handler) send(connID string, msg Outbound) {
	if err := h.sender.Send(connID, msg); err != nil {
		slog.Debug("multiplay: send failed", "connId", connID, "event", msg.Event, "error", err)
	}
}
