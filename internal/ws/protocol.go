package ws

import (
	"encoding/json"
	"errors"
)

// Inbound event types. Anything else that still parses is ignored so that
// newer clients can ship new event kinds without breaking this server.
const (
	typeJoinRoom  = "join-room"
	typeLeaveRoom = "leave-room"
	typeDraw      = "draw"
)

// Outbound event types.
const (
	typeJoinedRoom = "joined-room"
	typeUserJoined = "user-joined"
	typeUserLeft   = "user-left"
	typeError      = "error"
)

// errMalformed marks a frame that does not decode into a recognized shape.
var errMalformed = errors.New("malformed event")

// inbound is the tagged union of client frames. Payload stays raw: the server
// relays drawing state without interpreting it.
type inbound struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId"`
	Payload json.RawMessage `json:"payload"`
}

// decodeInbound parses a client frame. A frame that is not JSON, or that
// carries a known type with a missing roomId, is malformed. A frame with an
// unknown type decodes fine and is left for the caller to skip.
func decodeInbound(data []byte) (inbound, error) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return inbound{}, errMalformed
	}
	switch in.Type {
	case typeJoinRoom, typeLeaveRoom, typeDraw:
		if in.RoomID == "" {
			return inbound{}, errMalformed
		}
	case "":
		return inbound{}, errMalformed
	}
	return in, nil
}

// event is the single outbound frame shape; unused fields are omitted.
type event struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	UserID  string          `json:"userId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (e event) encode() []byte {
	b, _ := json.Marshal(e)
	return b
}

func joinedRoomEvent(roomID string) []byte {
	return event{Type: typeJoinedRoom, RoomID: roomID}.encode()
}

func userJoinedEvent(roomID, userID string) []byte {
	return event{Type: typeUserJoined, RoomID: roomID, UserID: userID}.encode()
}

func userLeftEvent(roomID, userID string) []byte {
	return event{Type: typeUserLeft, RoomID: roomID, UserID: userID}.encode()
}

func drawEvent(roomID, userID string, payload json.RawMessage) []byte {
	return event{Type: typeDraw, RoomID: roomID, UserID: userID, Payload: payload}.encode()
}

func errorEvent(msg string) []byte {
	return event{Type: typeError, Message: msg}.encode()
}
