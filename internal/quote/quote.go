// Package quote fetches hitokoto quotes from a primary API with a fallback
// API, and keeps the current display text fresh on a schedule.
package quote

import "time"

// Display strings published when no quote is available.
const (
	PlaceholderText = "加载中..."
	FailureText     = "获取一言失败"
)

// Quote is a single quote. It is replaced wholesale on every successful fetch.
type Quote struct {
	Text   string `json:"text" yaml:"text"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Display returns the text shown to the user: the quote alone, or the quote
// followed by its source in book-title marks.
func (q Quote) Display() string {
	if q.Source == "" {
		return q.Text
	}
	return q.Text + " —— 《" + q.Source + "》"
}

// Endpoint identifies which API produced (or failed to produce) a quote.
type Endpoint string

const (
	EndpointPrimary  Endpoint = "primary"
	EndpointFallback Endpoint = "fallback"
)

// Outcome is the result of one FetchOnce call. It is a success iff Err is nil.
type Outcome struct {
	Quote    Quote
	Endpoint Endpoint
	Err      error

	// ID correlates the log lines of one fetch attempt.
	ID        string
	FetchedAt time.Time
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Text returns the display string for this outcome: the quote's display
// form on success and FailureText otherwise.
func (o Outcome) Text() string {
	if o.Err != nil {
		return FailureText
	}
	return o.Quote.Display()
}
