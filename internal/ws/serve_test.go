package ws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
)

func startTestServer(t *testing.T) (*Hub, string, *auth.JWT) {
	t.Helper()
	j := auth.New("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHub(logger, j, 64)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	return h, "ws" + strings.TrimPrefix(srv.URL, "http"), j
}

func TestServeWS_RejectsBadCredential(t *testing.T) {
	h, wsURL, j := startTestServer(t)

	expired, err := j.Sign("alice", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
	}{
		{name: "no token", query: ""},
		{name: "garbage token", query: "?token=not-a-jwt"},
		{name: "expired token", query: "?token=" + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, _, err := websocket.Dial(ctx, wsURL+tt.query, nil)
			require.NoError(t, err, "handshake itself must succeed")
			defer conn.Close(websocket.StatusNormalClosure, "")

			_, _, err = conn.Read(ctx)
			require.Error(t, err)
			assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))

			// Nothing was registered for the rejected attempt.
			rooms, conns := h.Stats()
			assert.Equal(t, 0, rooms)
			assert.Equal(t, 0, conns)
		})
	}
}

func TestServeWS_EndToEnd(t *testing.T) {
	h, wsURL, j := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dial := func(userID string) *websocket.Conn {
		tok, err := j.Sign(userID, time.Hour)
		require.NoError(t, err)
		conn, _, err := websocket.Dial(ctx, wsURL+"?token="+tok, nil)
		require.NoError(t, err)
		return conn
	}

	readEvent := func(conn *websocket.Conn) event {
		var e event
		require.NoError(t, wsjson.Read(ctx, conn, &e))
		return e
	}

	// Alice joins an empty room.
	alice := dial("alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	require.NoError(t, wsjson.Write(ctx, alice, map[string]any{"type": "join-room", "roomId": "r1"}))

	got := readEvent(alice)
	assert.Equal(t, "joined-room", got.Type)
	assert.Equal(t, "r1", got.RoomID)

	// Bob joins; alice is notified.
	bob := dial("bob")
	require.NoError(t, wsjson.Write(ctx, bob, map[string]any{"type": "join-room", "roomId": "r1"}))

	got = readEvent(bob)
	assert.Equal(t, "joined-room", got.Type)

	got = readEvent(alice)
	assert.Equal(t, "user-joined", got.Type)
	assert.Equal(t, "bob", got.UserID)

	// Alice draws; bob receives it with alice's identity attached.
	payload := map[string]any{"strokes": []any{map[string]any{"x": 3.0}}}
	require.NoError(t, wsjson.Write(ctx, alice, map[string]any{"type": "draw", "roomId": "r1", "payload": payload}))

	got = readEvent(bob)
	assert.Equal(t, "draw", got.Type)
	assert.Equal(t, "alice", got.UserID)
	assert.NotEmpty(t, got.Payload)

	// Bob drops the transport; alice sees a user-left, state is swept.
	require.NoError(t, bob.Close(websocket.StatusNormalClosure, ""))

	got = readEvent(alice)
	assert.Equal(t, "user-left", got.Type)
	assert.Equal(t, "bob", got.UserID)

	require.Eventually(t, func() bool {
		rooms, conns := h.Stats()
		return rooms == 1 && conns == 1
	}, 3*time.Second, 10*time.Millisecond)
}
