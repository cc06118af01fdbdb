package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/adapter/wsbridge"
	"github.com/park285/oware-session/internal/obslog"
)

// NewServeCommand creates the websocket bridge command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board to browsers over a websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
	cmd.Flags().String("addr", ":8090", "listen address")
	cmd.Flags().Bool("send-image", false, "attach a PNG of the board to every frame")
	cmd.Flags().Int("depth", 3, "AI depth used when a viewer sends none")
	cmd.Flags().StringSlice("origin", nil, "allowed cross-origin viewer patterns")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	log := obslog.L()
	bridge := wsbridge.New(
		wsbridge.WithLogger(log),
		wsbridge.WithImages(a.cfg.Bridge.SendImage),
		wsbridge.WithDefaultDepth(a.cfg.AI.DefaultDepth),
		wsbridge.WithOriginPatterns(a.cfg.Bridge.Origins...),
	)
	ctrl, err := a.controller(ctx, bridge)
	if err != nil {
		return err
	}
	bridge.Bind(ctrl)

	srv := &http.Server{
		Addr:              a.cfg.Bridge.Addr,
		Handler:           bridge.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info(a.cat.Text("bridge.ready", map[string]string{"Addr": srv.Addr}, "bridge listening on "+srv.Addr),
			zap.String("service", a.client.BaseURL()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("bridge_shutdown_error", zap.Error(err))
	}
	bridge.Wait()
	return nil
}
