package resolve

import (
	"context"

	"github.com/mhadifilms/reverie/internal/telemetry"
)

// InstrumentedResolver wraps a Resolver with telemetry.
type InstrumentedResolver struct {
	resolver  Resolver
	telemetry *telemetry.Telemetry
}

func NewInstrumentedResolver(resolver Resolver, tel *telemetry.Telemetry) *InstrumentedResolver {
	return &InstrumentedResolver{
		resolver:  resolver,
		telemetry: tel,
	}
}

func (r *InstrumentedResolver) Resolve(ctx context.Context, sourceID string) (*Source, error) {
	var result *Source

	var err error

	instrumentedErr := r.telemetry.InstrumentClientOperation(ctx, "resolver", "resolve", func(ctx context.Context) error {
		result, err = r.resolver.Resolve(ctx, sourceID)

		return err
	})

	if instrumentedErr != nil {
		return nil, instrumentedErr
	}

	return result, nil
}
