package census

import "fmt"

// ValidationError reports a malformed or out-of-range request filter:
// an unknown TRU value, an empty name list, an empty field selection.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that an otherwise valid filter matched zero rows.
// An empty result set is never served as an empty list.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a store-level failure. It is surfaced, not retried;
// retry policy lives in the connection bootstrap.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstream wraps a store failure with the operation that hit it.
func NewUpstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
