package presenter

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/obslog"
	"github.com/park285/oware-session/internal/session"
	"github.com/park285/oware-session/internal/view"
)

// Func adapts a plain function to session.Presenter.
type Func func(ctx context.Context, in view.Instructions) error

func (f Func) Present(ctx context.Context, in view.Instructions) error {
	if f == nil {
		return nil
	}
	return f(ctx, in)
}

// Fanout delivers every frame to several surfaces without coupling them to each other.
// A failing surface is logged and skipped; the others still receive the frame.
type Fanout struct {
	targets []session.Presenter
	log     *zap.Logger
}

func NewFanout(targets ...session.Presenter) *Fanout {
	f := &Fanout{log: obslog.L()}
	for _, t := range targets {
		if t != nil {
			f.targets = append(f.targets, t)
		}
	}
	return f
}

func (f *Fanout) WithLogger(l *zap.Logger) *Fanout {
	if l != nil {
		f.log = l
	}
	return f
}

// Add registers another surface.
func (f *Fanout) Add(p session.Presenter) {
	if p != nil {
		f.targets = append(f.targets, p)
	}
}

func (f *Fanout) Len() int { return len(f.targets) }

func (f *Fanout) Present(ctx context.Context, in view.Instructions) error {
	if f == nil {
		return nil
	}
	for i, t := range f.targets {
		if err := t.Present(ctx, in); err != nil {
			f.log.Warn("presenter_error", zap.Int("target", i), zap.Error(err))
		}
	}
	return nil
}
