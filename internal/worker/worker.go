// Package worker implements the per-connection state machine: parse the
// client's request line and headers, either serve a cached response or
// connect to the origin and forward its response, then tear down.
package worker

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"proxylab/internal/cache"
	"proxylab/internal/connid"
	"proxylab/internal/errpage"
	"proxylab/internal/forward"
	"proxylab/internal/reqline"
	"proxylab/internal/rewrite"
	"proxylab/internal/rio"
)

// Dialer connects to an origin host:port, abstracted so tests can substitute
// an in-process listener instead of a real network dial.
type Dialer func(network, address string) (net.Conn, error)

// Worker serves one accepted connection end to end against a shared cache.
type Worker struct {
	Cache  *cache.Cache
	Dial   Dialer
	Logger zerolog.Logger
}

// New builds a Worker that dials real TCP connections and logs through
// logger, with id bound as a field so concurrent connections' log lines
// can be told apart.
func New(c *cache.Cache, id connid.ID, logger zerolog.Logger) *Worker {
	return &Worker{
		Cache:  c,
		Dial:   net.Dial,
		Logger: logger.With().Str("conn_id", id.String()).Logger(),
	}
}

// Serve drives conn through the full request/response exchange and always
// closes conn before returning. A panic anywhere in the exchange (for
// instance a cache API misuse) is recovered and logged rather than
// crashing the process; conn is still closed on that path via defer.
func (w *Worker) Serve(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			w.Logger.Error().Interface("panic", r).Msg("worker recovered from panic")
		}
	}()

	w.serve(conn)
}

func (w *Worker) serve(conn net.Conn) {
	p, err := parseRequest(conn)
	if err != nil {
		w.Logger.Warn().Err(err).Msg("bad request")
		writeReply(conn, errpage.BadRequest(err.Error()))
		return
	}

	if reply, ok := validate(p); !ok {
		w.Logger.Warn().Int("status", reply.Code).Msg("unsupported request, replying with error page")
		writeReply(conn, reply)
		return
	}

	uri, _ := p.Retrieve(reqline.FieldURI)

	if h := w.Cache.Get(uri); h != nil {
		defer w.Cache.Release(h)
		w.Logger.Debug().Str("uri", uri).Msg("cache hit")
		if err := rio.WriteAll(conn, h.Value()); err != nil {
			w.Logger.Warn().Err(err).Msg("write to client failed on cache hit")
		}
		return
	}

	w.Logger.Debug().Str("uri", uri).Msg("cache miss")
	w.serveMiss(conn, p, uri)
}

// serveMiss connects to the origin, sends the rewritten request, and
// streams the response back to the client.
func (w *Worker) serveMiss(conn net.Conn, p *reqline.Parser, uri string) {
	host, _ := p.Retrieve(reqline.FieldHost)
	port, _ := p.Retrieve(reqline.FieldPort)
	addr := net.JoinHostPort(host, port)

	origin, err := w.Dial("tcp", addr)
	if err != nil {
		w.Logger.Warn().Err(err).Str("addr", addr).Msg("cannot connect to origin")
		return
	}
	defer origin.Close()

	req, err := rewrite.Rewrite(p)
	if err != nil {
		w.Logger.Warn().Err(err).Msg("cannot build outbound request")
		return
	}

	if err := rio.WriteAll(origin, req); err != nil {
		w.Logger.Warn().Err(err).Msg("write to origin failed")
		return
	}

	res, err := forward.Response(origin, conn, w.Cache, uri, cache.MaxObjectSize)
	if err != nil {
		w.Logger.Warn().Err(err).Int("bytes", res.TotalBytes).Msg("forward failed partway")
		return
	}
	w.Logger.Debug().Int("bytes", res.TotalBytes).Bool("cached", res.Cached).Msg("forwarded response")
}

// parseRequest reads lines from conn until the blank line that ends the
// header block, feeding each one to a fresh reqline.Parser.
func parseRequest(conn net.Conn) (*reqline.Parser, error) {
	r := rio.New(conn)
	p := reqline.New()

	for {
		line, err := r.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("worker: reading request: %w", err)
		}
		trimmed := trimCRLF(line)
		if len(trimmed) == 0 {
			break
		}
		if _, err := p.ParseLine(string(line)); err != nil {
			return nil, fmt.Errorf("worker: parsing request: %w", err)
		}
	}
	return p, nil
}

func trimCRLF(b []byte) []byte {
	n := len(b)
	for n > 0 && (b[n-1] == '\n' || b[n-1] == '\r') {
		n--
	}
	return b[:n]
}

// validate rejects anything the proxy does not support: only GET over
// plain http, HTTP/1.0 or HTTP/1.1. ok is false if reply should be sent
// to the client instead of proceeding to cache lookup.
func validate(p *reqline.Parser) (reply errpage.Page, ok bool) {
	method, _ := p.Retrieve(reqline.FieldMethod)
	if method != "GET" {
		return errpage.NotImplemented(fmt.Sprintf("proxy does not support the %s method", method)), false
	}

	scheme, _ := p.Retrieve(reqline.FieldScheme)
	if scheme != "http" {
		return errpage.NotImplemented(fmt.Sprintf("proxy does not support the %s scheme", scheme)), false
	}

	version, _ := p.Retrieve(reqline.FieldHTTPVersion)
	if version != "1.0" && version != "1.1" {
		return errpage.BadRequest(fmt.Sprintf("unsupported HTTP version %q", version)), false
	}

	return errpage.Page{}, true
}

func writeReply(conn net.Conn, page errpage.Page) {
	_ = rio.WriteAll(conn, page.Response())
}
