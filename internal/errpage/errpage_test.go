package errpage

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadRequestResponseShape(t *testing.T) {
	resp := string(BadRequest("Cannot parse HTTP version").Response())

	assert.True(t, strings.HasPrefix(resp, "HTTP/1.0 400 Bad Request\r\n"))
	assert.Contains(t, resp, "Content-Type: text/html\r\n")
	assert.Contains(t, resp, "<h1>400: Bad Request</h1>")
	assert.Contains(t, resp, "<p>Cannot parse HTTP version</p>")
	assert.Contains(t, resp, "<em>Proxy</em>")
}

func TestNotImplementedResponseShape(t *testing.T) {
	resp := string(NotImplemented("HTTP method not implemented").Response())
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.0 501 Not Implemented\r\n"))
	assert.Contains(t, resp, "<h1>501: Not Implemented</h1>")
}

func TestResponseContentLengthMatchesBody(t *testing.T) {
	resp := string(BadRequest("x").Response())
	headerEnd := strings.Index(resp, "\r\n\r\n")
	assert.GreaterOrEqual(t, headerEnd, 0)

	headers := resp[:headerEnd]
	body := resp[headerEnd+4:]

	var contentLength int
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(line, "Content-Length: ") {
			n, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
			assert.NoError(t, err)
			contentLength = n
		}
	}
	assert.Equal(t, contentLength, len(body))
}
