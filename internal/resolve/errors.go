package resolve

import "fmt"

// ResolutionError represents a failure to map a source identifier to an audio
// URL: unknown identifiers, malformed resolver responses, or resolver outages.
type ResolutionError struct {
	SourceID string // The identifier that could not be resolved
	Reason   string // Human-readable explanation of the failure
	Err      error  // Underlying error, if any
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve source %s: %s", e.SourceID, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
