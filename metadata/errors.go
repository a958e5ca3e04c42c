package metadata

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrEmptyResponse reports a recognizer that answered with no content.
	ErrEmptyResponse = errors.New("metadata: empty response")
	// ErrNotConfigured reports a recognizer without credentials.
	ErrNotConfigured = errors.New("metadata: recognizer not configured")
	// ErrBusy reports a lookup started while another is running.
	ErrBusy = errors.New("metadata: lookup already running")
)

// Kind classifies lookup failures.
type Kind int

const (
	KindOther Kind = iota
	KindNetwork
	KindAuth
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindParse:
		return "parse"
	default:
		return "other"
	}
}

// LookupError is a classified identification failure.
type LookupError struct {
	Kind Kind
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return "metadata: " + e.Kind.String() + " error"
	}
	return "metadata: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() error { return e.Err }

// Classify wraps err in a LookupError. Errors that already carry a kind
// keep it; missing credentials map to KindAuth and net errors and
// deadlines map to KindNetwork.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var le *LookupError
	if errors.As(err, &le) {
		return err
	}

	kind := KindOther
	var netErr net.Error
	switch {
	case errors.Is(err, ErrNotConfigured):
		kind = KindAuth
	case errors.Is(err, ErrEmptyResponse):
		kind = KindParse
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		kind = KindNetwork
	}
	return &LookupError{Kind: kind, Err: err}
}

// KindOf returns the kind of a classified error, or KindOther.
func KindOf(err error) Kind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindOther
}
