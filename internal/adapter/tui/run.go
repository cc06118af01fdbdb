package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/park285/oware-session/internal/msgcat"
)

// Run drives the terminal UI until the user quits or ctx ends.
func Run(ctx context.Context, ctrl Controller, frames *Frames, cat *msgcat.Catalog, depth int) error {
	p := tea.NewProgram(New(ctx, ctrl, frames, cat, depth), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}
