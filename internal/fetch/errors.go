package fetch

import "fmt"

// NetworkError represents transfer-layer failures: connection errors,
// timeouts, and non-success HTTP status codes.
type NetworkError struct {
	URL        string // The URL being fetched
	StatusCode int    // HTTP status code, if applicable (0 for non-HTTP errors)
	Err        error  // Underlying error, if any
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error fetching %s (HTTP %d)", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
