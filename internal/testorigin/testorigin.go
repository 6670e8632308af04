// Package testorigin implements a small HTTP/1.x origin server used to
// exercise the proxy manually and from integration tests, generalized from
// tools/httpmock's fixed DumpRequest echo handler so the response body,
// headers, and latency are configurable per test case.
package testorigin

import (
	"net"
	"net/http"
	"net/http/httputil"
	"time"
)

// Server wraps an http.Server bound to a local listener.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// New starts a server using handler and returns once it is accepting
// connections. An empty addr binds to an ephemeral port on localhost,
// convenient for tests; Addr reports the port actually chosen.
func New(addr string, handler http.HandlerFunc) (*Server, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	return &Server{httpServer: srv, listener: ln}, nil
}

// Addr returns the "host:port" the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close shuts the server down immediately, closing any open connections.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

// Static returns a handler that waits delay, then replies with the given
// status, headers, and body on every request regardless of method or path.
func Static(status int, headers map[string]string, body string, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// Echo replies with a dump of the request it received, the same
// diagnostic shape tools/httpmock used for manual proxy testing.
func Echo(w http.ResponseWriter, r *http.Request) {
	dump, err := httputil.DumpRequest(r, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(dump)
}
