// Package errpage renders the fixed HTML error response the worker sends
// on any 4xx/5xx path, matching proxy.c's clienterror byte-for-byte in
// shape.
package errpage

import "fmt"

// Page describes one error reply.
type Page struct {
	Code  int
	Short string
	Long  string
}

// BadRequest builds a 400 page with the given detail message.
func BadRequest(long string) Page {
	return Page{Code: 400, Short: "Bad Request", Long: long}
}

// NotImplemented builds a 501 page with the given detail message.
func NotImplemented(long string) Page {
	return Page{Code: 501, Short: "Not Implemented", Long: long}
}

func (p Page) body() string {
	return fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>Error</title></head>\r\n"+
			"<body bgcolor=\"ffffff\"><h1>%d: %s</h1><p>%s</p>\r\n"+
			"<hr/><em>Proxy</em></body></html>",
		p.Code, p.Short, p.Long,
	)
}

// Response renders the full HTTP/1.0 response, status line, headers, and
// body, ready to write directly to the client connection.
func (p Page) Response() []byte {
	body := p.body()
	head := fmt.Sprintf(
		"HTTP/1.0 %d %s\r\nContent-Type: text/html\r\nContent-Length: %d\r\n\r\n",
		p.Code, p.Short, len(body),
	)
	return append([]byte(head), body...)
}
