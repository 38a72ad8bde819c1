package fetch

import (
	"context"

	"github.com/mhadifilms/reverie/internal/telemetry"
)

// InstrumentedFetcher wraps a Fetcher with telemetry.
type InstrumentedFetcher struct {
	fetcher   Fetcher
	telemetry *telemetry.Telemetry
}

func NewInstrumentedFetcher(fetcher Fetcher, tel *telemetry.Telemetry) *InstrumentedFetcher {
	return &InstrumentedFetcher{
		fetcher:   fetcher,
		telemetry: tel,
	}
}

func (f *InstrumentedFetcher) Fetch(ctx context.Context, url string, onProgress func(fraction float64)) ([]byte, error) {
	var result []byte

	var err error

	instrumentedErr := f.telemetry.InstrumentClientOperation(ctx, "fetcher", "fetch", func(ctx context.Context) error {
		result, err = f.fetcher.Fetch(ctx, url, onProgress)

		return err
	})

	if instrumentedErr != nil {
		return nil, instrumentedErr
	}

	return result, nil
}
