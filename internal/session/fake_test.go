package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/owarefast"
	"github.com/park285/oware-session/internal/view"
)

// fakeClient records every call and replays canned results.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	state     domain.GameState
	moveOK    bool
	failOps   map[string]error
	blockOn   string
	blockSkip int
	entered   chan struct{}
	unblock   chan struct{}
	afterMove func(*domain.GameState)
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		state:   initialState(),
		moveOK:  true,
		failOps: map[string]error{},
	}
}

func initialState() domain.GameState {
	var b domain.Board
	for i := range b {
		b[i] = 6
	}
	return domain.GameState{Board: b, CurrentPlayer: domain.Bottom}
}

func (f *fakeClient) record(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	err := f.failOps[op]
	block := false
	if f.blockOn == op {
		if f.blockSkip > 0 {
			f.blockSkip--
		} else {
			block = true
			f.blockOn = ""
		}
	}
	f.mu.Unlock()
	if block {
		f.entered <- struct{}{}
		<-f.unblock
	}
	return err
}

// block parks the next call of op until unblock is closed.
func (f *fakeClient) block(op string) { f.blockNth(op, 0) }

// blockNth parks the call of op that follows skip unparked ones. It fires once.
func (f *fakeClient) blockNth(op string, skip int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockOn = op
	f.blockSkip = skip
	f.entered = make(chan struct{})
	f.unblock = make(chan struct{})
}

func (f *fakeClient) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps[op] = err
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) set(fn func(*domain.GameState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.state)
}

// FetchState reads the state before a block takes effect, so a parked fetch
// answers with the state as it was when the request arrived.
func (f *fakeClient) FetchState(ctx context.Context) (*domain.GameState, error) {
	f.mu.Lock()
	s := f.state
	f.mu.Unlock()
	if err := f.record("fetch"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (f *fakeClient) StartGame(ctx context.Context) error {
	if err := f.record("start"); err != nil {
		return err
	}
	f.set(func(s *domain.GameState) { *s = initialState() })
	return nil
}

func (f *fakeClient) SubmitMove(ctx context.Context, n int) (bool, error) {
	if err := f.record(fmt.Sprintf("move/%d", n)); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.moveOK {
		return false, nil
	}
	f.state.HistoryLength++
	if f.afterMove != nil {
		f.afterMove(&f.state)
	}
	return true, nil
}

func (f *fakeClient) SwitchTurn(ctx context.Context) error {
	if err := f.record("switch"); err != nil {
		return err
	}
	f.set(func(s *domain.GameState) {
		if s.CurrentPlayer == domain.Bottom {
			s.CurrentPlayer = domain.Top
		} else {
			s.CurrentPlayer = domain.Bottom
		}
	})
	return nil
}

func (f *fakeClient) Undo(ctx context.Context) error {
	if err := f.record("undo"); err != nil {
		return err
	}
	f.set(func(s *domain.GameState) {
		if s.HistoryLength > 0 {
			s.HistoryLength--
		}
	})
	return nil
}

func (f *fakeClient) RequestAIMove(ctx context.Context, depth int) error {
	if err := f.record(fmt.Sprintf("ai/%d", depth)); err != nil {
		return err
	}
	f.set(func(s *domain.GameState) {
		s.HistoryLength++
		if s.CurrentPlayer == domain.Bottom {
			s.CurrentPlayer = domain.Top
		} else {
			s.CurrentPlayer = domain.Bottom
		}
	})
	return nil
}

// recorder keeps every frame it is given.
type recorder struct {
	mu     sync.Mutex
	frames []view.Instructions
}

func (r *recorder) Present(_ context.Context, in view.Instructions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, in)
	return nil
}

func (r *recorder) Frames() []view.Instructions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]view.Instructions(nil), r.frames...)
}

func (r *recorder) Last() view.Instructions {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return view.Instructions{}
	}
	return r.frames[len(r.frames)-1]
}

var errTransport = &owarefast.TransportError{Op: "test", Path: "/x", Status: 500}

type failingPresenter struct{}

func (failingPresenter) Present(context.Context, view.Instructions) error {
	return errors.New("screen gone")
}
