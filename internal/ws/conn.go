package ws

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/rajnish-49/collab-whiteboard/pkg/metrics"
)

// Conn is one authenticated client session. The rooms set is owned by the
// Hub and only touched under its lock; everything else is immutable after
// construction.
type Conn struct {
	id     string
	userID string
	ws     *websocket.Conn
	out    chan []byte
	rooms  map[string]struct{}
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// newConn wraps an upgraded socket for an authenticated user.
func newConn(id, userID string, sock *websocket.Conn, sendBuf int) *Conn {
	if sendBuf <= 0 {
		sendBuf = 256
	}
	return &Conn{
		id:     id,
		userID: userID,
		ws:     sock,
		out:    make(chan []byte, sendBuf),
		rooms:  map[string]struct{}{},
	}
}

// enqueue hands an event to the write pump without ever blocking the
// router. A full buffer means the peer is too slow; the event is dropped.
func (c *Conn) enqueue(b []byte) {
	select {
	case c.out <- b:
	default:
		metrics.DroppedSends.Inc()
	}
}

// read blocks until it receives a text/binary message.
// Returns false if the connection is closed.
func (c *Conn) read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// writeLoop drains the outbound queue + sends periodic pings.
// Exits when the queue is closed or ctx is cancelled.
func (c *Conn) writeLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b, ok := <-c.out:
			if !ok {
				return
			}
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// close closes the websocket normally.
func (c *Conn) close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
