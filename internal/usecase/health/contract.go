package health

import "context"

// Pinger checks one dependency. Redis, the SQLite catalog and the embedding
// provider all satisfy it through small adapters in main.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
