package calendar

import "fmt"

// ProviderError wraps a failure surfaced by the Google Calendar API while
// serving a request. It is propagated unchanged to the caller; retry and
// backoff decisions belong to the caller, not this package.
type ProviderError struct {
	Op  string // failed operation, e.g. "list events"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar provider: failed to %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(op string, err error) error {
	return &ProviderError{Op: op, Err: err}
}
