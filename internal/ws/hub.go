package ws

import (
	"net/http"
	"sync"

	"log/slog"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/rajnish-49/collab-whiteboard/pkg/metrics"
)

// TokenVerifier authenticates the credential carried on the upgrade request.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Hub owns the connection registry and the room directory behind a single
// mutex. Every membership mutation and the notifications it produces happen
// under that lock, so events from different connections never interleave
// mid-mutation and all members of a room observe broadcasts in one total
// order.
type Hub struct {
	log     *slog.Logger
	verify  TokenVerifier
	sendBuf int

	mu    sync.Mutex
	conns map[*Conn]struct{}            // connection registry
	rooms map[string]map[*Conn]struct{} // room directory, entry iff non-empty
}

// NewHub sets up the hub with the token verifier + logger.
func NewHub(logger *slog.Logger, verify TokenVerifier, sendBuf int) *Hub {
	return &Hub{
		log:     logger,
		verify:  verify,
		sendBuf: sendBuf,
		conns:   map[*Conn]struct{}{},
		rooms:   map[string]map[*Conn]struct{}{},
	}
}

// ServeWS handles a new websocket connection. The token rides on the
// connection URL (?token=...); verification happens before the connection
// is registered anywhere, and every failure closes with the same policy
// violation code so callers cannot probe which check tripped.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	uid, err := h.verify.Verify(r.URL.Query().Get("token"))
	if err != nil {
		metrics.AuthRejects.Inc()
		_ = sock.Close(websocket.StatusPolicyViolation, "unauthorized")
		return
	}

	c := newConn(uuid.New().String(), uid, sock, h.sendBuf)
	h.admit(c)
	h.log.Info("ws.connected", "connId", c.id, "userId", uid)

	go c.writeLoop(ctx)

	for {
		data, ok := c.read(ctx)
		if !ok {
			break
		}
		h.handle(c, data)
	}

	h.disconnect(c)
	_ = c.close()
	h.log.Info("ws.disconnected", "connId", c.id, "userId", uid)
}

// admit inserts an authenticated connection into the registry.
func (h *Hub) admit(c *Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	metrics.ActiveConnections.Inc()
}

// handle routes one inbound frame from an admitted connection.
func (h *Hub) handle(c *Conn, data []byte) {
	in, err := decodeInbound(data)
	if err != nil {
		metrics.EventsIn.WithLabelValues("malformed").Inc()
		c.enqueue(errorEvent("invalid message"))
		return
	}

	switch in.Type {
	case typeJoinRoom:
		metrics.EventsIn.WithLabelValues(typeJoinRoom).Inc()
		h.join(c, in.RoomID)
	case typeLeaveRoom:
		metrics.EventsIn.WithLabelValues(typeLeaveRoom).Inc()
		h.leave(c, in.RoomID)
	case typeDraw:
		metrics.EventsIn.WithLabelValues(typeDraw).Inc()
		h.draw(c, in)
	default:
		// Unknown but well-formed type: ignore, never error. Lets newer
		// clients talk to older servers mid-rollout.
		metrics.EventsIn.WithLabelValues("unknown").Inc()
	}
}

// join adds c to a room, creating it on first join. Re-joining a room the
// connection is already in changes nothing and broadcasts nothing; the
// joiner is still acked so client retries converge.
func (h *Hub) join(c *Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := c.rooms[roomID]; ok {
		c.enqueue(joinedRoomEvent(roomID))
		return
	}

	members := h.rooms[roomID]
	if members == nil {
		members = map[*Conn]struct{}{}
		h.rooms[roomID] = members
		metrics.ActiveRooms.Inc()
	}
	members[c] = struct{}{}
	c.rooms[roomID] = struct{}{}

	// Membership is mutated before anything is sent, so a draw that
	// follows this join sees the same member set the notifications did.
	note := userJoinedEvent(roomID, c.userID)
	for peer := range members {
		if peer == c {
			continue
		}
		peer.enqueue(note)
	}
	c.enqueue(joinedRoomEvent(roomID))

	h.log.Debug("room.join", "room", roomID, "userId", c.userID, "members", len(members))
}

// leave removes c from a room it is a member of; otherwise a no-op.
func (h *Hub) leave(c *Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomID)
}

// leaveLocked does the shared leave work for explicit leaves and
// disconnects. Caller holds h.mu.
func (h *Hub) leaveLocked(c *Conn, roomID string) {
	if _, ok := c.rooms[roomID]; !ok {
		return
	}

	delete(c.rooms, roomID)
	members := h.rooms[roomID]
	delete(members, c)

	if len(members) == 0 {
		// A room exists in the directory iff it has members.
		delete(h.rooms, roomID)
		metrics.ActiveRooms.Dec()
		h.log.Debug("room.removed", "room", roomID)
		return
	}

	note := userLeftEvent(roomID, c.userID)
	for peer := range members {
		peer.enqueue(note)
	}
}

// draw relays an opaque payload to every other member of the room. A draw
// from a non-member is dropped without a reply: it is expected when a leave
// and an in-flight draw cross, and indistinguishable from a stale sender.
func (h *Hub) draw(c *Conn, in inbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := c.rooms[in.RoomID]; !ok {
		return
	}

	note := drawEvent(in.RoomID, c.userID, in.Payload)
	for peer := range h.rooms[in.RoomID] {
		if peer == c {
			continue
		}
		peer.enqueue(note)
	}
}

// disconnect sweeps a closing connection out of every room it joined and
// out of the registry. Peers see the same user-left notifications an
// explicit leave of each room would have produced.
func (h *Hub) disconnect(c *Conn) {
	h.mu.Lock()
	for roomID := range c.rooms {
		h.leaveLocked(c, roomID)
	}
	delete(h.conns, c)
	close(c.out)
	h.mu.Unlock()
	metrics.ActiveConnections.Dec()
}

// Stats returns current room and connection counts.
func (h *Hub) Stats() (rooms, conns int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms), len(h.conns)
}
