package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/oware-session/internal/adapter/presenter"
	"github.com/park285/oware-session/internal/config"
	"github.com/park285/oware-session/internal/mirror"
	"github.com/park285/oware-session/internal/msgcat"
	"github.com/park285/oware-session/internal/obslog"
	"github.com/park285/oware-session/internal/owarefast"
	"github.com/park285/oware-session/internal/session"
	"github.com/park285/oware-session/internal/view"
)

// app holds what every command builds from configuration.
type app struct {
	cfg      *config.AppConfig
	client   *owarefast.Client
	cat      *msgcat.Catalog
	renderer *view.Renderer
	closers  []io.Closer
}

// setup initializes logging and loads configuration. logTo, when non-nil,
// replaces stdout for console log output.
func setup(cmd *cobra.Command, logTo io.Writer) (*app, error) {
	if logTo != nil {
		obslog.Redirect(logTo)
	}
	if err := obslog.InitFromEnv(); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	cat, err := msgcat.New(cfg.Messages.Dir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	headers := cfg.Service.Headers
	opts := []owarefast.Option{
		owarefast.WithTimeout(cfg.Service.Timeout),
		owarefast.WithMaxConnsPerHost(cfg.Service.MaxConns),
	}
	if len(headers) > 0 {
		opts = append(opts, owarefast.WithHeaderProvider(func() map[string]string { return headers }))
	}

	return &app{
		cfg:      cfg,
		client:   owarefast.NewClient(cfg.Service.BaseURL, opts...),
		cat:      cat,
		renderer: view.NewRenderer(cat),
	}, nil
}

// controller builds a session controller presenting to surface and, when
// configured, to the Redis mirror.
func (a *app) controller(ctx context.Context, surface session.Presenter) (*session.Controller, error) {
	fan := presenter.NewFanout(surface)
	if a.cfg.Mirror.RedisURL != "" {
		rdb, err := mirror.Connect(ctx, a.cfg.Mirror.RedisURL)
		if err != nil {
			return nil, err
		}
		pub := mirror.NewPublisher(rdb, a.cfg.Mirror.Channel)
		a.closers = append(a.closers, pub)
		fan.Add(pub)
		obslog.L().Info("mirror_enabled", zap.String("channel", pub.Channel()))
	}
	return session.New(a.client, fan,
		session.WithRenderer(a.renderer),
		session.WithLogger(obslog.L()),
	), nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	_ = obslog.L().Sync()
}
