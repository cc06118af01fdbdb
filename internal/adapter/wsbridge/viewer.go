package wsbridge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/oware-session/pkg/owaredto"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

type viewer struct {
	id   string
	conn *websocket.Conn
	send chan owaredto.Frame

	closeOnce sync.Once
	done      chan struct{}
}

func newViewer(conn *websocket.Conn) *viewer {
	return &viewer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan owaredto.Frame, sendBuffer),
		done: make(chan struct{}),
	}
}

// offer queues a frame without blocking. It reports false when the viewer
// cannot keep up.
func (v *viewer) offer(f owaredto.Frame) bool {
	select {
	case <-v.done:
		return true
	default:
	}
	select {
	case v.send <- f:
		return true
	default:
		return false
	}
}

func (v *viewer) writeLoop(ctx context.Context, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.done:
			return
		case f := <-v.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, v.conn, f)
			cancel()
			if err != nil {
				log.Debug("ws_write_error", zap.String("viewer", v.id), zap.Error(err))
				return
			}
		}
	}
}

func (v *viewer) close() {
	v.closeOnce.Do(func() {
		close(v.done)
		_ = v.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}
