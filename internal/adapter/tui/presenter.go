package tui

import (
	"context"

	"github.com/park285/oware-session/internal/view"
)

// Frames is a session.Presenter feeding the terminal program.
// Only the newest frame matters, so a full buffer drops the oldest one.
type Frames struct {
	ch chan view.Instructions
}

func NewFrames() *Frames {
	return &Frames{ch: make(chan view.Instructions, 8)}
}

func (f *Frames) Present(ctx context.Context, in view.Instructions) error {
	for {
		select {
		case f.ch <- in:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Frames) C() <-chan view.Instructions { return f.ch }
