package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/park285/oware-session/internal/mirror"
)

// NewWatchCommand creates the command that follows mirrored frames.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print frames mirrored to Redis by another session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.Mirror.RedisURL == "" {
				return errors.New("watch needs --redis-url or OWARE_MIRROR_REDIS_URL")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rdb, err := mirror.Connect(ctx, a.cfg.Mirror.RedisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()

			out := cmd.OutOrStdout()
			return mirror.Watch(ctx, rdb, a.cfg.Mirror.Channel, func(m mirror.Message) {
				in := m.Instructions
				line := fmt.Sprintf("#%d %s | top %s bottom %s", m.Seq, in.Banner, in.TopScoreText, in.BottomScoreText)
				if in.StatusText != "" {
					line += " | " + in.StatusText
				}
				fmt.Fprintln(out, line)
			})
		},
	}
}
