package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/services"
	"github.com/urfave/cli/v3"
)

// Serve runs the token endpoint until interrupted. The server always exchanges the configured
// client credentials itself, so it never depends on catalog.token_endpoint.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	provider, err := services.NewClientCredentialsProvider(r.config.Credentials.Spotify, r.httpClient)
	if err != nil {
		return fmt.Errorf("cannot serve tokens: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewTokenRouter(provider, r.logger, cfg.RateLimit, cfg.Burst)
	r.logger.Info("serving tokens", "addr", cfg.Addr(), "rate_limit", cfg.RateLimit, "burst", cfg.Burst)
	return server.New(cfg.Addr(), router, r.logger).Run(ctx)
}
