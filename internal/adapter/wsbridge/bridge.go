package wsbridge

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/oware-session/internal/boardimage"
	"github.com/park285/oware-session/internal/obslog"
	"github.com/park285/oware-session/internal/view"
	"github.com/park285/oware-session/pkg/owaredto"
)

// Controller is the subset of session.Controller the bridge drives.
type Controller interface {
	Sync(ctx context.Context) error
	NewGame(ctx context.Context) error
	Undo(ctx context.Context) error
	Move(ctx context.Context, slot int) error
	AIMove(ctx context.Context, depth int) error
}

type Option func(*Bridge)

func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithImages attaches a base64 PNG of the board to every render frame.
func WithImages(on bool) Option { return func(b *Bridge) { b.sendImage = on } }

// WithDefaultDepth is used when an AI event carries no depth.
func WithDefaultDepth(d int) Option { return func(b *Bridge) { b.defaultDepth = d } }

// WithOriginPatterns allows cross-origin viewers.
func WithOriginPatterns(p ...string) Option {
	return func(b *Bridge) { b.origins = append(b.origins, p...) }
}

// Bridge fans rendered frames out to websocket viewers and turns their events
// into controller transactions. All viewers share one board.
type Bridge struct {
	ctrl         Controller
	log          *zap.Logger
	sendImage    bool
	defaultDepth int
	origins      []string

	mu      sync.RWMutex
	viewers map[*viewer]struct{}
	last    *view.Instructions
	seq     int64

	wg sync.WaitGroup
}

func New(opts ...Option) *Bridge {
	b := &Bridge{
		log:          obslog.L(),
		defaultDepth: 3,
		viewers:      make(map[*viewer]struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Bind sets the controller events are dispatched to.
func (b *Bridge) Bind(ctrl Controller) { b.ctrl = ctrl }

// Routes returns the HTTP surface: /ws, /board.png and /healthz.
func (b *Bridge) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", b.healthz)
	r.Get("/board.png", b.boardPNG)
	r.Get("/ws", b.serveWS)
	return r
}

// Present implements session.Presenter.
func (b *Bridge) Present(_ context.Context, in view.Instructions) error {
	frame := owaredto.Frame{Type: owaredto.FrameRender, Board: ToDTOBoard(in)}
	if b.sendImage {
		png, err := boardimage.Render(in)
		if err != nil {
			b.log.Warn("board_image_error", zap.Error(err))
		} else {
			frame.Image = base64.StdEncoding.EncodeToString(png)
		}
	}

	// Frames are queued under the lock so every viewer sees them in Seq order.
	b.mu.Lock()
	b.seq++
	frame.Seq = b.seq
	cp := in
	b.last = &cp
	var slow []*viewer
	for v := range b.viewers {
		if !v.offer(frame) {
			delete(b.viewers, v)
			slow = append(slow, v)
		}
	}
	b.mu.Unlock()

	for _, v := range slow {
		b.log.Warn("ws_viewer_slow", zap.String("viewer", v.id))
		v.close()
	}
	return nil
}

// Last returns the most recently presented instructions.
func (b *Bridge) Last() (view.Instructions, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return view.Instructions{}, false
	}
	return *b.last, true
}

// Viewers reports how many websocket viewers are connected.
func (b *Bridge) Viewers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.viewers)
}

// Wait blocks until dispatched transactions have finished.
func (b *Bridge) Wait() { b.wg.Wait() }

func (b *Bridge) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (b *Bridge) boardPNG(w http.ResponseWriter, _ *http.Request) {
	in, ok := b.Last()
	if !ok {
		http.Error(w, "no board rendered yet", http.StatusNotFound)
		return
	}
	png, err := boardimage.Render(in)
	if err != nil {
		b.log.Error("board_image_error", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  b.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		b.log.Warn("ws_accept_error", zap.Error(err))
		return
	}
	v := newViewer(conn)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	b.mu.Lock()
	b.viewers[v] = struct{}{}
	if b.last != nil {
		v.offer(owaredto.Frame{Type: owaredto.FrameRender, Seq: b.seq, Board: ToDTOBoard(*b.last)})
	}
	b.mu.Unlock()
	b.log.Info("ws_viewer_joined", zap.String("viewer", v.id))

	go v.writeLoop(ctx, b.log)
	// A fresh page loads the current state.
	b.dispatch(ctx, v, owaredto.Event{Type: owaredto.EventSync})

	for {
		var ev owaredto.Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				b.log.Debug("ws_read_error", zap.String("viewer", v.id), zap.Error(err))
			}
			break
		}
		b.dispatch(ctx, v, ev)
	}
	b.drop(v)
	b.log.Info("ws_viewer_left", zap.String("viewer", v.id))
}

func (b *Bridge) drop(v *viewer) {
	b.mu.Lock()
	_, ok := b.viewers[v]
	delete(b.viewers, v)
	b.mu.Unlock()
	if ok {
		v.close()
	}
}

// dispatch runs the transaction off the read loop. Viewer disconnects do not
// cancel a transaction that has already started.
func (b *Bridge) dispatch(ctx context.Context, v *viewer, ev owaredto.Event) {
	if b.ctrl == nil {
		return
	}
	run, derr := b.resolve(ev)
	if derr != nil {
		b.log.Info("ws_event_dropped", zap.String("viewer", v.id), zap.String("type", ev.Type), zap.String("code", derr.Code))
		v.offer(owaredto.Frame{Type: owaredto.FrameError, Error: derr})
		return
	}
	txCtx := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := run(txCtx); err != nil {
			b.log.Info("ws_event_failed", zap.String("viewer", v.id), zap.String("type", ev.Type), zap.Error(err))
		}
	}()
}

func (b *Bridge) resolve(ev owaredto.Event) (func(context.Context) error, *owaredto.Error) {
	switch ev.Type {
	case owaredto.EventSync:
		return b.ctrl.Sync, nil
	case owaredto.EventStart:
		return b.ctrl.NewGame, nil
	case owaredto.EventUndo:
		return b.ctrl.Undo, nil
	case owaredto.EventSlot:
		if ev.Slot == nil {
			return nil, &owaredto.Error{Code: "missing_slot", Message: "slot event without slot"}
		}
		slot := *ev.Slot
		return func(ctx context.Context) error { return b.ctrl.Move(ctx, slot) }, nil
	case owaredto.EventAI:
		depth, err := parseDepth(ev.Depth, b.defaultDepth)
		if err != nil {
			return nil, &owaredto.Error{Code: "bad_depth", Message: err.Error()}
		}
		return func(ctx context.Context) error { return b.ctrl.AIMove(ctx, depth) }, nil
	default:
		return nil, &owaredto.Error{Code: "unknown_event", Message: "unknown event type " + strconv.Quote(ev.Type)}
	}
}

var errDepthNotInteger = errors.New("depth must be an integer")

// parseDepth reads the raw depth input. Range is left to the service.
func parseDepth(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errDepthNotInteger
	}
	return n, nil
}
