package quote

import (
	"strconv"
	"strings"
)

// ErrorKind classifies why an endpoint did not yield a quote.
type ErrorKind string

const (
	// KindTransport covers DNS, connect, TLS and timeout failures.
	KindTransport ErrorKind = "transport"
	// KindStatus is a non-200 HTTP status, or a non-200 code in the
	// fallback envelope.
	KindStatus ErrorKind = "status"
	// KindMalformed is a body that does not have the expected shape.
	KindMalformed ErrorKind = "malformed"
)

// EndpointError describes the failure of a single endpoint.
type EndpointError struct {
	Endpoint   Endpoint
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *EndpointError) Error() string {
	b := strings.Builder{}
	b.WriteString("quote: ")
	b.WriteString(string(e.Endpoint))
	b.WriteString(" endpoint: ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		b.WriteString(" (status=")
		b.WriteString(strconv.Itoa(e.StatusCode))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// FetchError is returned when both endpoints failed.
type FetchError struct {
	Primary  error
	Fallback error
}

func (e *FetchError) Error() string {
	return "quote: all endpoints failed: " + e.Primary.Error() + "; " + e.Fallback.Error()
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// IsTimeout reports whether err contains a transport error caused by a
// timeout.
func IsTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for _, cause := range causes(err) {
		if t, ok := cause.(timeout); ok && t.Timeout() {
			return true
		}
	}
	return false
}

// causes flattens an error tree depth first.
func causes(err error) []error {
	if err == nil {
		return nil
	}
	out := []error{err}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			out = append(out, causes(e)...)
		}
	case interface{ Unwrap() error }:
		out = append(out, causes(u.Unwrap())...)
	}
	return out
}
