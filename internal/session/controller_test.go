package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/owarefast"
)

func newController(t *testing.T) (*Controller, *fakeClient, *recorder) {
	t.Helper()
	fc := newFakeClient()
	rec := &recorder{}
	return New(fc, rec, WithLogger(zap.NewNop())), fc, rec
}

func TestSyncRendersCurrentState(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))

	assert.Equal(t, []string{"fetch"}, fc.Calls())
	require.Len(t, rec.Frames(), 1)
	assert.Equal(t, "Current Player: Bottom", rec.Last().Banner)
	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 6, snap.Board[0])
	assert.False(t, c.Busy())
}

func TestNewGame(t *testing.T) {
	c, fc, rec := newController(t)
	fc.set(func(s *domain.GameState) { s.Winner = domain.WinnerTop })

	require.NoError(t, c.NewGame(context.Background()))
	assert.Equal(t, []string{"start", "fetch"}, fc.Calls())
	last := rec.Last()
	assert.True(t, last.StartGameEnabled)
	assert.False(t, last.DisableAll)
	assert.Equal(t, "0", last.TopScoreText)
}

func TestNewGameStartFailureKeepsSnapshot(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	fc.fail("start", errTransport)

	err := c.NewGame(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, owarefast.ErrTransport)
	assert.Len(t, rec.Frames(), 1)
	_, ok := c.Snapshot()
	assert.True(t, ok)
	assert.False(t, c.Busy())
}

func TestMoveSendsOneBasedHouse(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))

	require.NoError(t, c.Move(context.Background(), 2))
	assert.Equal(t, []string{"fetch", "move/3", "fetch", "switch", "fetch"}, fc.Calls())
	assert.Len(t, rec.Frames(), 3)
	assert.Equal(t, "Current Player: Top", rec.Last().Banner)
	assert.True(t, rec.Last().UndoEnabled)
	assert.False(t, c.Busy())
}

func TestMoveTopPlayer(t *testing.T) {
	c, fc, _ := newController(t)
	fc.set(func(s *domain.GameState) { s.CurrentPlayer = domain.Top })
	require.NoError(t, c.Sync(context.Background()))

	require.NoError(t, c.Move(context.Background(), 11))
	assert.Contains(t, fc.Calls(), "move/6")
}

func TestMoveWithoutSnapshotFetchesFirst(t *testing.T) {
	c, fc, _ := newController(t)
	require.NoError(t, c.Move(context.Background(), 0))
	assert.Equal(t, []string{"fetch", "move/1", "fetch", "switch", "fetch"}, fc.Calls())
}

func TestMoveOnWrongSideMakesNoCall(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))

	for _, slot := range []int{6, 11, -1, 12} {
		err := c.Move(context.Background(), slot)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRejectedMove)
		var rej *domain.RejectedMoveError
		assert.True(t, errors.As(err, &rej))
	}
	assert.Equal(t, []string{"fetch"}, fc.Calls())
	assert.Len(t, rec.Frames(), 1)
	assert.False(t, c.Busy())
}

func TestRefusedMoveDoesNotSwitch(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	before := rec.Last().Banner
	fc.moveOK = false

	err := c.Move(context.Background(), 4)
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, []string{"fetch", "move/5", "fetch"}, fc.Calls())
	assert.NotContains(t, fc.Calls(), "switch")
	assert.Len(t, rec.Frames(), 1)
	assert.Equal(t, before, rec.Last().Banner)
	assert.False(t, c.Busy())
}

func TestMoveRejectedWhenGameOver(t *testing.T) {
	c, fc, _ := newController(t)
	fc.set(func(s *domain.GameState) { s.Winner = domain.WinnerBottom })
	require.NoError(t, c.Sync(context.Background()))

	assert.ErrorIs(t, c.Move(context.Background(), 0), ErrGameOver)
	assert.ErrorIs(t, c.AIMove(context.Background(), 3), ErrGameOver)
	assert.Equal(t, []string{"fetch"}, fc.Calls())
}

func TestMoveSwitchFailureReleasesLock(t *testing.T) {
	c, fc, _ := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	fc.fail("switch", errTransport)

	err := c.Move(context.Background(), 0)
	assert.ErrorIs(t, err, owarefast.ErrTransport)
	assert.False(t, c.Busy())
	require.NoError(t, c.Sync(context.Background()))
}

func TestAIMoveThinkingTogglesOnFailure(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	assert.False(t, rec.Last().Thinking)
	fc.fail("ai/4", errTransport)

	err := c.AIMove(context.Background(), 4)
	assert.ErrorIs(t, err, owarefast.ErrTransport)

	frames := rec.Frames()
	require.Len(t, frames, 3)
	assert.False(t, frames[0].Thinking)
	assert.True(t, frames[1].Thinking)
	assert.True(t, frames[1].DisableAll)
	assert.False(t, frames[2].Thinking)
	assert.False(t, frames[2].DisableAll)
	assert.False(t, c.Thinking())
	assert.False(t, c.Busy())
	assert.Equal(t, []string{"fetch", "ai/4", "fetch"}, fc.Calls())
}

func TestAIMoveSuccess(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))

	require.NoError(t, c.AIMove(context.Background(), 5))
	assert.Equal(t, []string{"fetch", "ai/5", "fetch", "fetch"}, fc.Calls())

	frames := rec.Frames()
	require.Len(t, frames, 4)
	assert.True(t, frames[1].Thinking)
	assert.True(t, frames[2].Thinking)
	assert.Equal(t, "Current Player: Top", frames[2].Banner)
	assert.False(t, frames[3].Thinking)
	assert.True(t, frames[3].UndoEnabled)
}

func TestAIMoveFinalFetchFailureStillRestoresControls(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	fc.fail("ai/2", errTransport)
	fc.fail("fetch", errTransport)

	require.Error(t, c.AIMove(context.Background(), 2))
	last := rec.Last()
	assert.False(t, last.Thinking)
	assert.True(t, last.HasState)
	assert.Equal(t, "6", last.Slots[0].Text)
}

func TestAIMoveLateFinalFetchDoesNotOverwriteNewerMove(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	// The first fetch after ai/3 renders under the lock; the second one is
	// the post-release fetch and is held back.
	fc.blockNth("fetch", 1)

	done := make(chan error, 1)
	go func() { done <- c.AIMove(context.Background(), 3) }()
	<-fc.entered

	require.False(t, c.Busy())
	snap, _ := c.Snapshot()
	require.Equal(t, domain.Top, snap.CurrentPlayer)
	require.Equal(t, 1, snap.HistoryLength)

	require.NoError(t, c.Move(context.Background(), 6))
	snap, _ = c.Snapshot()
	require.Equal(t, domain.Bottom, snap.CurrentPlayer)
	require.Equal(t, 2, snap.HistoryLength)
	framesBefore := len(rec.Frames())

	close(fc.unblock)
	require.NoError(t, <-done)

	snap, _ = c.Snapshot()
	assert.Equal(t, domain.Bottom, snap.CurrentPlayer)
	assert.Equal(t, 2, snap.HistoryLength)
	assert.Len(t, rec.Frames(), framesBefore)
	assert.Equal(t, "Current Player: Bottom", rec.Last().Banner)
	assert.False(t, rec.Last().Thinking)

	// Bottom to play: a top-row slot is refused locally.
	callsBefore := len(fc.Calls())
	var rejected *domain.RejectedMoveError
	assert.ErrorAs(t, c.Move(context.Background(), 6), &rejected)
	assert.Len(t, fc.Calls(), callsBefore)
}

func TestDepthIsSentAsGiven(t *testing.T) {
	c, fc, _ := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	_ = c.AIMove(context.Background(), 0)
	assert.Contains(t, fc.Calls(), "ai/0")
}

func TestUndoUnavailableWithoutHistory(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	assert.False(t, rec.Last().UndoEnabled)

	assert.ErrorIs(t, c.Undo(context.Background()), ErrUndoUnavailable)
	assert.NotContains(t, fc.Calls(), "undo")
}

func TestUndoWithoutSnapshot(t *testing.T) {
	c, fc, _ := newController(t)
	assert.ErrorIs(t, c.Undo(context.Background()), ErrUndoUnavailable)
	assert.Empty(t, fc.Calls())
}

func TestUndoAfterMove(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	require.NoError(t, c.Move(context.Background(), 1))

	require.NoError(t, c.Undo(context.Background()))
	calls := fc.Calls()
	assert.Equal(t, []string{"undo", "fetch"}, calls[len(calls)-2:])
	assert.False(t, rec.Last().UndoEnabled)
}

func TestUndoRefusedOnceWinnerStands(t *testing.T) {
	c, fc, _ := newController(t)
	fc.set(func(s *domain.GameState) {
		s.HistoryLength = 30
		s.Winner = domain.WinnerTop
	})
	require.NoError(t, c.Sync(context.Background()))
	assert.ErrorIs(t, c.Undo(context.Background()), ErrUndoUnavailable)
	assert.NotContains(t, fc.Calls(), "undo")
}

func TestTieBanner(t *testing.T) {
	c, fc, rec := newController(t)
	fc.set(func(s *domain.GameState) { s.Winner = domain.WinnerTie })
	require.NoError(t, c.Sync(context.Background()))

	last := rec.Last()
	assert.Equal(t, "Game Over! Winner is Tie.", last.Banner)
	assert.True(t, last.StartGameEnabled)
	assert.True(t, last.DisableAll)
}

func TestMoveIntoWinRendersGameOver(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	fc.afterMove = func(s *domain.GameState) { s.Winner = domain.WinnerBottom }

	require.NoError(t, c.Move(context.Background(), 5))
	last := rec.Last()
	assert.Equal(t, "Game Over! Winner is Bottom.", last.Banner)
	assert.False(t, last.AIMoveEnabled)
	assert.False(t, last.UndoEnabled)
}

func TestBusyRejectsEverythingWithoutCalls(t *testing.T) {
	c, fc, rec := newController(t)
	require.NoError(t, c.Sync(context.Background()))
	fc.set(func(s *domain.GameState) { s.HistoryLength = 2 })
	require.NoError(t, c.Sync(context.Background()))
	fc.block("ai/3")

	done := make(chan error, 1)
	go func() { done <- c.AIMove(context.Background(), 3) }()
	<-fc.entered

	require.True(t, c.Busy())
	require.True(t, c.Thinking())
	callsBefore := len(fc.Calls())
	framesBefore := len(rec.Frames())
	snapBefore, _ := c.Snapshot()

	ctx := context.Background()
	assert.ErrorIs(t, c.Move(ctx, 0), ErrBusy)
	assert.ErrorIs(t, c.AIMove(ctx, 3), ErrBusy)
	assert.ErrorIs(t, c.NewGame(ctx), ErrBusy)
	assert.ErrorIs(t, c.Undo(ctx), ErrBusy)
	assert.ErrorIs(t, c.Sync(ctx), ErrBusy)

	assert.Len(t, fc.Calls(), callsBefore)
	assert.Len(t, rec.Frames(), framesBefore)
	snapAfter, _ := c.Snapshot()
	assert.Equal(t, snapBefore, snapAfter)

	close(fc.unblock)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
	assert.False(t, c.Thinking())
}

func TestPresenterErrorIsNotFatal(t *testing.T) {
	fc := newFakeClient()
	c := New(fc, failingPresenter{}, WithLogger(zap.NewNop()))
	require.NoError(t, c.Sync(context.Background()))
	require.NoError(t, c.Move(context.Background(), 0))
}

func TestNilPresenter(t *testing.T) {
	c := New(newFakeClient(), nil)
	require.NoError(t, c.Sync(context.Background()))
}
