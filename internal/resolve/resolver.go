package resolve

import "context"

// Source is the result of resolving a catalog source identifier: a fetchable
// audio URL plus hints about the stream.
type Source struct {
	AudioURL        string
	DurationSeconds int
	Ext             string
}

// Resolver maps an external source identifier to a fetchable audio source.
type Resolver interface {
	Resolve(ctx context.Context, sourceID string) (*Source, error)
}
