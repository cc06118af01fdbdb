package cli

import (
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/park285/oware-session/internal/adapter/tui"
)

// NewPlayCommand creates the terminal UI command.
func NewPlayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Console logs would tear the screen; LOG_TO_FILE still works.
			a, err := setup(cmd, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			frames := tui.NewFrames()
			ctrl, err := a.controller(ctx, frames)
			if err != nil {
				return err
			}
			return tui.Run(ctx, ctrl, frames, a.cat, a.cfg.AI.DefaultDepth)
		},
	}
	cmd.Flags().Int("depth", 3, "initial AI search depth")
	return cmd
}
