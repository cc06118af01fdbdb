package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the oware command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oware",
		Short: "Oware client for a remote game service",
		Long: `Play Oware against a remote game service.

The service owns the rules; this client submits moves, asks for AI moves
and renders whatever state the service reports.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("base-url", "", "game service origin (OWARE_SERVICE_BASE_URL)")
	pf.Duration("timeout", 0, "per-request timeout, 0 for none")
	pf.String("messages", "", "directory with message catalog overrides")
	pf.String("redis-url", "", "mirror rendered frames to this Redis")

	cmd.AddCommand(NewPlayCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewSnapshotCommand())
	cmd.AddCommand(NewWatchCommand())
	return cmd
}
