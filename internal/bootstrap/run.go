package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/attendance-gateway/config"
	"golang.org/x/sync/errgroup"
)

// RunConfig groups what Run needs.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Redis    redis.UniversalClient
	Logger   *slog.Logger
}

// Run listens on the configured address and serves until ctx is cancelled
// or the server fails.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil {
		return errors.New("run config missing AppConfig")
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Config.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Config.HTTP.Addr, err)
	}
	return Serve(ctx, ln, cfg)
}

// Serve runs the gateway on ln. On return the server is shut down and
// pending security events have been flushed.
func Serve(ctx context.Context, ln net.Listener, cfg RunConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	server := NewHTTPServer(&HTTPServerConfig{
		Config:   appCfg,
		Services: cfg.Services,
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ShutdownConfig{
			Server:  server,
			Timeout: appCfg.HTTP.ShutdownTimeout,
			Logger:  logger,
		})
	})

	err := g.Wait()
	if closeErr := cfg.Services.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}
