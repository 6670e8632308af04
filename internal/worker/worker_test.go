package worker

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxylab/internal/cache"
)

func newTestWorker(t *testing.T, c *cache.Cache, dial Dialer) *Worker {
	t.Helper()
	return &Worker{
		Cache:  c,
		Dial:   dial,
		Logger: zerolog.Nop(),
	}
}

// serveAndRead runs Serve against one half of a net.Pipe, writes request on
// the other half, and returns everything Serve wrote back before closing.
func serveAndRead(t *testing.T, w *Worker, request string) string {
	t.Helper()
	clientConn, serverConn := net.Pipe()

	done := make(chan struct{})
	go func() {
		w.Serve(serverConn)
		close(done)
	}()

	_, err := clientConn.Write([]byte(request))
	require.NoError(t, err)

	var out strings.Builder
	buf := make([]byte, 4096)
	for {
		clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, err := clientConn.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			break
		}
	}
	clientConn.Close()
	<-done
	return out.String()
}

// fakeOrigin starts a one-shot raw TCP listener that replies with response
// to whatever it is sent, then returns a Dialer that connects to it.
func fakeOrigin(t *testing.T, response string) Dialer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		conn.Write([]byte(response))
	}()

	return func(network, address string) (net.Conn, error) {
		return net.Dial("tcp", ln.Addr().String())
	}
}

func TestServeRepliesBadRequestOnMalformedRequestLine(t *testing.T) {
	w := newTestWorker(t, cache.New(), nil)
	out := serveAndRead(t, w, "not a valid request line at all\r\n\r\n")
	assert.Contains(t, out, "HTTP/1.0 400 Bad Request")
}

func TestServeRepliesNotImplementedForNonGetMethod(t *testing.T) {
	w := newTestWorker(t, cache.New(), nil)
	out := serveAndRead(t, w, "POST http://h/a HTTP/1.1\r\nHost: h\r\n\r\n")
	assert.Contains(t, out, "HTTP/1.0 501 Not Implemented")
}

func TestServeRepliesNotImplementedForNonHttpScheme(t *testing.T) {
	w := newTestWorker(t, cache.New(), nil)
	out := serveAndRead(t, w, "GET https://h/a HTTP/1.1\r\nHost: h\r\n\r\n")
	assert.Contains(t, out, "HTTP/1.0 501 Not Implemented")
}

func TestServeRepliesBadRequestForUnsupportedVersion(t *testing.T) {
	w := newTestWorker(t, cache.New(), nil)
	out := serveAndRead(t, w, "GET http://h/a HTTP/2.0\r\nHost: h\r\n\r\n")
	assert.Contains(t, out, "HTTP/1.0 400 Bad Request")
}

func TestServeServesFromCacheWithoutDialing(t *testing.T) {
	c := cache.New()
	c.Insert("http://h/a", []byte("cached body"))

	dialed := false
	dial := func(network, address string) (net.Conn, error) {
		dialed = true
		return nil, assertNeverCalled()
	}

	w := newTestWorker(t, c, dial)
	out := serveAndRead(t, w, "GET http://h/a HTTP/1.1\r\nHost: h\r\n\r\n")

	assert.Equal(t, "cached body", out)
	assert.False(t, dialed)
}

func assertNeverCalled() error {
	panic("dial should not have been called on a cache hit")
}

func TestServeForwardsAndCachesOnMiss(t *testing.T) {
	c := cache.New()
	dial := fakeOrigin(t, "HTTP/1.0 200 OK\r\nContent-Length: 5\r\n\r\nhello")

	w := newTestWorker(t, c, dial)
	out := serveAndRead(t, w, "GET http://origin.example/a HTTP/1.1\r\nHost: origin.example\r\n\r\n")

	assert.Equal(t, "HTTP/1.0 200 OK\r\nContent-Length: 5\r\n\r\nhello", out)

	h := c.Get("http://origin.example/a")
	require.NotNil(t, h)
	defer c.Release(h)
	assert.Equal(t, out, string(h.Value()))
}

func TestServeClosesConnectionWhenOriginUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close() // nothing listens here anymore

	dial := func(network, address string) (net.Conn, error) {
		return net.Dial("tcp", addr)
	}

	w := newTestWorker(t, cache.New(), dial)
	out := serveAndRead(t, w, "GET http://origin.example/a HTTP/1.1\r\nHost: origin.example\r\n\r\n")
	assert.Empty(t, out)
}

func TestServeRecoversFromPanicWithoutCrashingCaller(t *testing.T) {
	c := cache.New()
	h := c.Get("missing") // nil, nothing to release
	assert.Nil(t, h)

	// Build a worker whose dial panics partway through the miss path, and
	// confirm Serve recovers instead of propagating the panic.
	dial := func(network, address string) (net.Conn, error) {
		panic("simulated dial failure")
	}
	w := newTestWorker(t, c, dial)

	assert.NotPanics(t, func() {
		serveAndRead(t, w, "GET http://origin.example/a HTTP/1.1\r\nHost: origin.example\r\n\r\n")
	})
}
