// Command proxy runs the caching HTTP forward proxy: load configuration,
// build the shared cache, and accept connections until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"proxylab/internal/acceptor"
	"proxylab/internal/cache"
	"proxylab/internal/config"
	"proxylab/internal/connid"
	"proxylab/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logging.Init(cfg.LogLevel)
	c := cache.NewSized(cfg.CacheSize, cfg.ObjectSize)

	issuer, err := connid.NewIssuer(0)
	if err != nil {
		logging.Logger.Error().Err(err).Msg("cannot build connection id issuer")
		return 1
	}

	a := acceptor.New(c, issuer, logging.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx, net.JoinHostPort("", cfg.Port)); err != nil {
		logging.Logger.Error().Err(err).Msg("acceptor exited with error")
		return 1
	}

	logging.Logger.Info().Msg("shut down cleanly")
	return 0
}
