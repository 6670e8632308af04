// Package rewrite builds the outbound HTTP/1.0 request the proxy sends to
// the origin, from a parsed client request. It reimplements proxy.c's
// construct_new_request, generalized from a fixed MAXLINE stack buffer to
// a bytes.Buffer with an explicit size cap.
package rewrite

import (
	"bytes"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/net/http/httpguts"

	"proxylab/internal/reqline"
)

// MaxRequestSize is the largest outbound request Rewrite will produce.
// 8 KiB comfortably holds a request line plus a realistic header set.
const MaxRequestSize = 8192

// UserAgent is the fixed override value sent upstream regardless of what
// the client supplied, matching header_user_agent in the source.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:3.10.0) Gecko/20220411 Firefox/63.0.1"

// overridden names the headers the proxy always drops from the client and
// re-emits with fixed values. Comparison is case-sensitive, matching the
// source's strcmp checks exactly: a client sending "connection" in lower
// case slips through untouched.
var overridden = map[string]bool{
	"Connection":       true,
	"Proxy-Connection": true,
	"User-Agent":       true,
}

// ErrTooLarge is returned when the serialized outbound request would
// exceed MaxRequestSize; the worker must abort the exchange rather than
// send a partial request.
type ErrTooLarge struct {
	Size int
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("rewrite: outbound request is %d bytes, exceeds MaxRequestSize (%d)", e.Size, MaxRequestSize)
}

// Rewrite builds the bytes of the outbound GET request for p: the
// HTTP/1.0 request line, every client header except the overridden set
// (passed through in parser discovery order, validated as real header
// field name/value pairs), a synthesized Host header only if the client
// didn't supply one, and the fixed Connection/Proxy-Connection/User-Agent
// overrides exactly once each.
func Rewrite(p *reqline.Parser) ([]byte, error) {
	uri, _ := p.Retrieve(reqline.FieldURI)
	host, _ := p.Retrieve(reqline.FieldHost)
	port, _ := p.Retrieve(reqline.FieldPort)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GET %s HTTP/1.0\r\n", uri)

	passthrough := lo.Filter(p.Headers(), func(h reqline.Header, _ int) bool {
		return !overridden[h.Name]
	})

	hostFound := false
	for _, h := range passthrough {
		if !httpguts.ValidHeaderFieldName(h.Name) || !httpguts.ValidHeaderFieldValue(h.Value) {
			continue
		}
		if h.Name == "Host" {
			hostFound = true
		}
		fmt.Fprintf(&buf, "%s: %s\r\n", h.Name, h.Value)
	}

	if !hostFound {
		fmt.Fprintf(&buf, "Host: %s:%s\r\n", host, port)
	}
	fmt.Fprintf(&buf, "Connection: close\r\nProxy-Connection: close\r\nUser-Agent: %s\r\n\r\n", UserAgent)

	if buf.Len() > MaxRequestSize {
		return nil, &ErrTooLarge{Size: buf.Len()}
	}
	return buf.Bytes(), nil
}
