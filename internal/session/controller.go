package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/obslog"
	"github.com/park285/oware-session/internal/view"
)

// StateClient is the remote game service as the controller sees it.
type StateClient interface {
	FetchState(ctx context.Context) (*domain.GameState, error)
	StartGame(ctx context.Context) error
	SubmitMove(ctx context.Context, n int) (bool, error)
	SwitchTurn(ctx context.Context) error
	Undo(ctx context.Context) error
	RequestAIMove(ctx context.Context, depth int) error
}

// Presenter draws one set of render instructions. Present must not call back
// into the Controller.
type Presenter interface {
	Present(ctx context.Context, in view.Instructions) error
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithRenderer(r *view.Renderer) Option {
	return func(c *Controller) {
		if r != nil {
			c.renderer = r
		}
	}
}

// Controller serializes user and AI transactions against the remote service.
// At most one transaction runs at a time; overlapping attempts fail with ErrBusy.
type Controller struct {
	client    StateClient
	presenter Presenter
	renderer  *view.Renderer
	log       *zap.Logger

	mu       sync.Mutex
	busy     bool
	thinking bool
	gen      uint64
	state    *domain.GameState

	// presentMu orders frames; held while a frame is handed to the presenter.
	presentMu sync.Mutex
}

func New(client StateClient, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		presenter: presenter,
		renderer:  view.NewRenderer(nil),
		log:       obslog.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot returns a copy of the most recently fetched state.
func (c *Controller) Snapshot() (*domain.GameState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil, false
	}
	s := *c.state
	return &s, true
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) Thinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thinking
}

// Sync fetches the current state and renders it.
func (c *Controller) Sync(ctx context.Context) error {
	log := c.txnLogger("sync")
	if _, err := c.acquire(false, nil); err != nil {
		log.Debug("session_rejected", zap.Error(err))
		return err
	}
	defer c.release()
	return c.refresh(ctx, log, false)
}

// NewGame resets the remote game and renders the initial position.
func (c *Controller) NewGame(ctx context.Context) error {
	log := c.txnLogger("new_game")
	if _, err := c.acquire(false, nil); err != nil {
		log.Debug("session_rejected", zap.Error(err))
		return err
	}
	defer c.release()

	if err := c.client.StartGame(ctx); err != nil {
		log.Error("start_game_error", zap.Error(err))
		return fmt.Errorf("start game: %w", err)
	}
	if err := c.refresh(ctx, log, false); err != nil {
		return err
	}
	log.Info("New game started.")
	return nil
}

// Undo reverts the last committed move. It is refused without contacting the
// service when the last snapshot has no history or the game is over.
func (c *Controller) Undo(ctx context.Context) error {
	log := c.txnLogger("undo")
	_, err := c.acquire(false, func(s *domain.GameState) error {
		if s == nil || !s.CanUndo() {
			return ErrUndoUnavailable
		}
		return nil
	})
	if err != nil {
		log.Debug("session_rejected", zap.Error(err))
		return err
	}
	defer c.release()

	if err := c.client.Undo(ctx); err != nil {
		log.Error("undo_error", zap.Error(err))
		return fmt.Errorf("undo: %w", err)
	}
	if err := c.refresh(ctx, log, false); err != nil {
		return err
	}
	log.Info("Last move undone.")
	return nil
}

// Move plays the house at board index slot for the player whose turn the
// last snapshot reports.
func (c *Controller) Move(ctx context.Context, slot int) error {
	log := c.txnLogger("move").With(zap.Int("slot", slot))
	snap, err := c.acquire(false, notFinished)
	if err != nil {
		log.Debug("session_rejected", zap.Error(err))
		return err
	}
	defer c.release()

	if snap == nil {
		if snap, err = c.fetch(ctx, log); err != nil {
			return err
		}
		if snap.Finished() {
			return ErrGameOver
		}
	}

	n, err := domain.ResolveMove(slot, snap.CurrentPlayer)
	if err != nil {
		log.Info("session_move_rejected", zap.String("player", snap.CurrentPlayer.String()), zap.Error(err))
		return err
	}

	ok, err := c.client.SubmitMove(ctx, n)
	if err != nil {
		log.Error("submit_move_error", zap.Int("house", n), zap.Error(err))
		return fmt.Errorf("submit move %d: %w", n, err)
	}
	if !ok {
		log.Info("invalid move", zap.Int("house", n))
		// Keeps the snapshot authoritative; nothing is re-rendered.
		_, _ = c.fetch(ctx, log)
		return ErrIllegalMove
	}

	if err := c.refresh(ctx, log, false); err != nil {
		return err
	}
	if err := c.client.SwitchTurn(ctx); err != nil {
		log.Error("switch_turn_error", zap.Error(err))
		return fmt.Errorf("switch turn: %w", err)
	}
	if err := c.refresh(ctx, log, false); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Player moved from house %d", n), zap.Int("house", n))
	return nil
}

// AIMove asks the service to play one full turn at the given search depth.
// Controls are shown disabled while the request runs and restored afterwards,
// whether or not the request succeeded.
func (c *Controller) AIMove(ctx context.Context, depth int) error {
	log := c.txnLogger("ai_move").With(zap.Int("depth", depth))
	snap, err := c.acquire(true, notFinished)
	if err != nil {
		log.Debug("session_rejected", zap.Error(err))
		return err
	}

	c.present(ctx, log, snap, true)

	var gen uint64
	err = func() error {
		defer func() { gen = c.release() }()
		if err := c.client.RequestAIMove(ctx, depth); err != nil {
			log.Error("ai_move_error", zap.Error(err))
			return fmt.Errorf("ai move: %w", err)
		}
		return c.refresh(ctx, log, true)
	}()

	ferr := c.settle(ctx, log, gen)
	if err != nil {
		return err
	}
	if ferr != nil {
		return ferr
	}
	log.Info("AI made a move.")
	return nil
}

// settle fetches and renders after the lock was released at generation gen.
// The result is dropped once another transaction has acquired the lock. A
// failed fetch renders the last snapshot so controls come back.
func (c *Controller) settle(ctx context.Context, log *zap.Logger, gen uint64) error {
	st, err := c.client.FetchState(ctx)
	if err != nil {
		log.Error("state_fetch_error", zap.Error(err))
		err = fmt.Errorf("fetch state: %w", err)
	}

	c.presentMu.Lock()
	defer c.presentMu.Unlock()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		log.Debug("session_stale_state_dropped", zap.Uint64("gen", gen))
		return err
	}
	if st != nil {
		c.state = st
	}
	var cur *domain.GameState
	if c.state != nil {
		cp := *c.state
		cur = &cp
	}
	c.mu.Unlock()

	c.presentLocked(ctx, log, cur, false)
	return err
}

func notFinished(s *domain.GameState) error {
	if s != nil && s.Finished() {
		return ErrGameOver
	}
	return nil
}

// acquire takes the transaction lock after check accepts the current snapshot.
func (c *Controller) acquire(thinking bool, check func(*domain.GameState) error) (*domain.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, ErrBusy
	}
	if check != nil {
		if err := check(c.state); err != nil {
			return nil, err
		}
	}
	c.busy = true
	c.thinking = thinking
	c.gen++
	if c.state == nil {
		return nil, nil
	}
	s := *c.state
	return &s, nil
}

// release frees the transaction lock and returns the generation it was held at.
func (c *Controller) release() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.thinking = false
	return c.gen
}

// fetch replaces the snapshot. On failure the previous snapshot is kept.
func (c *Controller) fetch(ctx context.Context, log *zap.Logger) (*domain.GameState, error) {
	st, err := c.client.FetchState(ctx)
	if err != nil {
		log.Error("state_fetch_error", zap.Error(err))
		return nil, fmt.Errorf("fetch state: %w", err)
	}
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
	cp := *st
	return &cp, nil
}

func (c *Controller) refresh(ctx context.Context, log *zap.Logger, thinking bool) error {
	st, err := c.fetch(ctx, log)
	if err != nil {
		return err
	}
	c.present(ctx, log, st, thinking)
	return nil
}

func (c *Controller) present(ctx context.Context, log *zap.Logger, st *domain.GameState, thinking bool) {
	c.presentMu.Lock()
	defer c.presentMu.Unlock()
	c.presentLocked(ctx, log, st, thinking)
}

func (c *Controller) presentLocked(ctx context.Context, log *zap.Logger, st *domain.GameState, thinking bool) {
	if c.presenter == nil {
		return
	}
	if err := c.presenter.Present(ctx, c.renderer.Render(st, thinking)); err != nil {
		log.Warn("present_error", zap.Error(err))
	}
}

func (c *Controller) txnLogger(op string) *zap.Logger {
	return c.log.With(zap.String("op", op), zap.String("txn", uuid.NewString()))
}
