package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/park285/oware-session/internal/boardimage"
)

// NewSnapshotCommand creates the command that saves the current board as a PNG.
func NewSnapshotCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the current board to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.client.FetchState(cmd.Context())
			if err != nil {
				return err
			}
			in := a.renderer.Render(st, false)
			png, err := boardimage.Render(in)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)\n", in.Banner, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "board.png", "output file")
	return cmd
}
