// Package connid issues unique, time-sortable identifiers for accepted
// connections, used only to correlate log lines for a single exchange.
// They carry no protocol meaning and play no role in cache keying.
//
// Generalized from concurrent/seckill/id.go's package-level NewId helper:
// that version always created a fresh snowflake.Node(1) per call, which
// both defeats the point of a monotonic generator and would race under
// concurrent connections. Issuer instead wraps one shared *snowflake.Node
// built once at startup.
package connid

import "github.com/bwmarrin/snowflake"

// ID identifies one accepted connection for the lifetime of its worker.
type ID snowflake.ID

// String renders the ID the same way bwmarrin/snowflake does, base10.
func (id ID) String() string {
	return snowflake.ID(id).String()
}

// Issuer generates IDs from a single snowflake node.
type Issuer struct {
	node *snowflake.Node
}

// NewIssuer builds an Issuer scoped to the given node number. Proxy
// instances that only ever run a single process per node pick 0; the node
// number only matters when multiple proxy processes share a clock and
// must avoid colliding IDs.
func NewIssuer(node int64) (*Issuer, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	return &Issuer{node: n}, nil
}

// Next returns a fresh ID, safe for concurrent use across worker
// goroutines (snowflake.Node serializes generation internally).
func (i *Issuer) Next() ID {
	return ID(i.node.Generate())
}
