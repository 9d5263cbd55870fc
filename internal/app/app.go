// Package app wires configuration into a runnable paperdesk instance: the
// simulated market engine, the HTTP/websocket surface and the optional trade
// journal.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"paperdesk/internal/config"
	"paperdesk/internal/engine"
	"paperdesk/internal/logger"
	"paperdesk/internal/recorder"
	httpapi "paperdesk/internal/transport/http"
)

type App struct {
	cfg     *config.Config
	engine  *engine.Engine
	httpSrv *httpapi.Server
	journal *recorder.Journal
}

// NewApp builds the full application from configuration without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run starts the engine clock and the HTTP server, then blocks until ctx is
// canceled or either component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}

	if a.journal != nil {
		a.journal.Start()
	}
	a.engine.Start()
	logger.Infof("paperdesk started addr=%s tick_interval=%q", a.httpSrv.Addr(), a.cfg.Engine.TickInterval)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.httpSrv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		a.engine.Shutdown()
		if a.journal != nil {
			a.journal.Stop()
		}
		return nil
	})

	return group.Wait()
}

// Engine exposes the underlying engine instance for harnesses.
func (a *App) Engine() *engine.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}
