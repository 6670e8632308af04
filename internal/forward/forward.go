// Package forward streams an origin's HTTP response to the client and
// decides whether the response is a cache candidate, reimplementing
// proxy.c's forward_http_response.
package forward

import (
	"fmt"
	"io"

	"proxylab/internal/cache"
	"proxylab/internal/rio"
)

// Result reports what one forwarding pass accomplished.
type Result struct {
	TotalBytes int
	Cached     bool
}

// Response reads from origin in blocks of up to maxObject bytes, writing
// each block to client in order, until origin's EOF. If the entire
// response arrived in a single ReadBlock iteration and its total size is
// in (0, maxObject], it is inserted into c under key.
//
// Given a maxObject-sized buffer, a total size within maxObject can only
// arise from a single iteration: reading two full buffers' worth would
// already exceed maxObject. The single-iteration flag is still tracked
// explicitly rather than left as an implicit consequence of buffer sizing,
// so the invariant stays visible at the call site.
func Response(origin io.Reader, client io.Writer, c *cache.Cache, key string, maxObject int) (Result, error) {
	reader := rio.New(origin)
	buf := make([]byte, maxObject)

	total := 0
	singleIteration := true
	sawFirstRead := false

	for {
		n, err := reader.ReadBlock(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{TotalBytes: total}, fmt.Errorf("forward: read from origin: %w", err)
		}

		if sawFirstRead {
			singleIteration = false
		}
		sawFirstRead = true

		if err := rio.WriteAll(client, buf[:n]); err != nil {
			return Result{TotalBytes: total}, fmt.Errorf("forward: write to client: %w", err)
		}
		total += n
	}

	res := Result{TotalBytes: total}
	if total > 0 && total <= maxObject && singleIteration {
		c.Insert(key, buf[:total])
		res.Cached = true
	}
	return res, nil
}
