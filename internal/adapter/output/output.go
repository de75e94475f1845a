// Package output provides output formatters for fetched quotes.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmylchreest/hitotop/internal/quote"
)

// Record is the serializable view of a quote fetch or of the fetcher's
// current status.
type Record struct {
	Text      string       `json:"text" yaml:"text"`
	Quote     *quote.Quote `json:"quote,omitempty" yaml:"quote,omitempty"`
	Endpoint  string       `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	FetchID   string       `json:"fetch_id,omitempty" yaml:"fetch_id,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Error     string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromOutcome builds a record from a single fetch.
func FromOutcome(o quote.Outcome) Record {
	r := Record{
		Text:    o.Text(),
		FetchID: o.ID,
	}
	if o.OK() {
		q := o.Quote
		r.Quote = &q
		r.Endpoint = string(o.Endpoint)
		if !o.FetchedAt.IsZero() {
			at := o.FetchedAt
			r.UpdatedAt = &at
		}
	} else {
		r.Error = o.Err.Error()
	}
	return r
}

// FromStatus builds a record from the fetcher status.
func FromStatus(s quote.Status) Record {
	r := Record{
		Text:     s.Text,
		Endpoint: string(s.Endpoint),
	}
	if s.Quote.Text != "" {
		q := s.Quote
		r.Quote = &q
	}
	if !s.UpdatedAt.IsZero() {
		at := s.UpdatedAt
		r.UpdatedAt = &at
	}
	if s.LastErr != nil {
		r.Error = s.LastErr.Error()
	}
	return r
}

// Formatter formats records for output.
type Formatter interface {
	// Format writes the formatted record to the writer.
	Format(w io.Writer, r Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ValidFormats returns all supported format types.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", FormatPlain:
		return FormatPlain, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q, must be one of: %v", s, ValidFormats())
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // Custom text/template for plain format
	ShowTime bool   // Append the relative update time in plain format
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter()
	case FormatYAML:
		return NewYAMLFormatter()
	default:
		return NewPlainFormatter(opts)
	}
}
