// Package acceptor listens on a TCP port and dispatches each accepted
// connection to its own worker goroutine, generalizing tools/l4's bare
// accept loop with graceful shutdown and structured logging.
package acceptor

import (
	"context"
	"net"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"proxylab/internal/cache"
	"proxylab/internal/connid"
	"proxylab/internal/worker"
)

// Acceptor owns the listening socket and the shared cache every dispatched
// worker reads and writes.
type Acceptor struct {
	Cache  *cache.Cache
	Issuer *connid.Issuer
	Logger zerolog.Logger
}

// New builds an Acceptor over c, issuing connection IDs from issuer and
// logging through logger.
func New(c *cache.Cache, issuer *connid.Issuer, logger zerolog.Logger) *Acceptor {
	return &Acceptor{Cache: c, Issuer: issuer, Logger: logger}
}

// Run listens on addr and dispatches a worker goroutine per accepted
// connection until ctx is canceled. On cancellation, Run stops accepting
// new connections and waits for every dispatched worker to finish before
// returning, mirroring tools/l4's one-thread-per-connection model but
// replacing its "never exits" accept loop with a drainable one.
func (a *Acceptor) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	a.Logger.Info().Str("addr", ln.Addr().String()).Msg("acceptor listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return g.Wait()
			default:
				a.Logger.Warn().Err(err).Msg("accept failed")
				continue
			}
		}

		id := a.Issuer.Next()
		w := worker.New(a.Cache, id, a.Logger)
		g.Go(func() error {
			w.Serve(conn)
			return nil
		})
	}
}
