// Package reqline parses HTTP/1.x request lines and header lines one line
// at a time. It plays the role CS:APP's http_parser library played for
// the original C proxy lab; Go has no equivalent library to link against,
// so the contract is reimplemented here as an ordinary package instead of
// a linked external collaborator.
package reqline

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxLineLength is the longest line ParseLine will accept, matching
// PARSER_MAXLINE in the source.
const MaxLineLength = 4096

// Field identifies one of the values retrievable after the request line
// has been parsed.
type Field int

const (
	FieldMethod Field = iota
	FieldHost
	FieldScheme
	FieldURI
	FieldPort
	FieldPath
	FieldHTTPVersion
)

// State reports what kind of line ParseLine just consumed.
type State int

const (
	// StateRequest is returned after the first line (the request line).
	StateRequest State = iota
	// StateHeader is returned after every subsequent header line.
	StateHeader
)

// Header is a parsed "Name: value" pair. The colon is not included in
// either field.
type Header struct {
	Name  string
	Value string
}

// Parser accumulates the fields and headers of a single HTTP request as
// ParseLine is called once per line. A Parser is not safe for concurrent
// use and is meant to be scoped to a single connection's goroutine.
type Parser struct {
	fields         map[Field]string
	headers        []Header
	nextHeaderIdx  int
	gotRequestLine bool
}

// New returns an empty Parser ready to receive its first ParseLine call.
func New() *Parser {
	return &Parser{fields: make(map[Field]string)}
}

// ParseLine parses one line of an HTTP request: the request line on the
// first call, a header line on every subsequent call. The line may or may
// not include its trailing "\r\n"; ParseLine treats both the same way.
func (p *Parser) ParseLine(line string) (State, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) > MaxLineLength {
		return 0, fmt.Errorf("reqline: line exceeds %d bytes", MaxLineLength)
	}

	if !p.gotRequestLine {
		if err := p.parseRequestLine(line); err != nil {
			return 0, err
		}
		p.gotRequestLine = true
		return StateRequest, nil
	}

	name, value, err := parseHeaderLine(line)
	if err != nil {
		return 0, err
	}
	p.headers = append(p.headers, Header{Name: name, Value: value})
	return StateHeader, nil
}

func (p *Parser) parseRequestLine(line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return fmt.Errorf("reqline: malformed request line %q", line)
	}
	method, rawURI, versionPart := parts[0], parts[1], parts[2]

	const httpPrefix = "HTTP/"
	if !strings.HasPrefix(versionPart, httpPrefix) {
		return fmt.Errorf("reqline: malformed HTTP version %q", versionPart)
	}
	version := strings.TrimPrefix(versionPart, httpPrefix)

	u, err := url.Parse(rawURI)
	if err != nil {
		return fmt.Errorf("reqline: cannot parse uri %q: %w", rawURI, err)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	p.fields[FieldMethod] = method
	p.fields[FieldURI] = rawURI
	p.fields[FieldHTTPVersion] = version
	p.fields[FieldScheme] = u.Scheme
	p.fields[FieldHost] = host
	p.fields[FieldPort] = port
	p.fields[FieldPath] = path
	return nil
}

func parseHeaderLine(line string) (name, value string, err error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", fmt.Errorf("reqline: malformed header %q", line)
	}
	name = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if name == "" {
		return "", "", fmt.Errorf("reqline: empty header name in %q", line)
	}
	return name, value, nil
}

// Retrieve fetches a field parsed from the request line. ok is false if
// the field was never set, i.e. before a request line has been parsed; a
// URI with no explicit port yields port "80".
func (p *Parser) Retrieve(f Field) (value string, ok bool) {
	value, ok = p.fields[f]
	return
}

// LookupHeader searches the stored headers for name, an O(n) scan as in
// the source (header counts here are small enough that this is never a
// bottleneck).
func (p *Parser) LookupHeader(name string) (Header, bool) {
	for _, h := range p.headers {
		if h.Name == name {
			return h, true
		}
	}
	return Header{}, false
}

// NextHeader iterates over stored headers in discovery order. It does not
// restart once exhausted; calling ParseLine again to add more headers lets
// subsequent NextHeader calls see them.
func (p *Parser) NextHeader() (Header, bool) {
	if p.nextHeaderIdx >= len(p.headers) {
		return Header{}, false
	}
	h := p.headers[p.nextHeaderIdx]
	p.nextHeaderIdx++
	return h, true
}

// Headers returns a copy of every header parsed so far, independent of the
// NextHeader iterator's position. Callers (notably internal/rewrite) that
// need to process the whole header set at once should use this instead of
// draining NextHeader.
func (p *Parser) Headers() []Header {
	return append([]Header(nil), p.headers...)
}
