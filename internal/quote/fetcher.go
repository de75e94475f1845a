package quote

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is how often the fetcher refreshes on its own.
const DefaultInterval = time.Hour

// DefaultMinInterval is the minimum spacing between two fetches, however
// they were triggered.
const DefaultMinInterval = 2 * time.Second

// Source performs a single fetch attempt. *Client implements it.
type Source interface {
	FetchOnce(ctx context.Context) Outcome
}

// Dispatcher runs fn on the context that owns the UI. The GTK overlay uses
// glib.IdleAdd; Direct runs fn on the calling goroutine.
type Dispatcher func(fn func())

// Direct is a Dispatcher that runs fn immediately.
func Direct(fn func()) { fn() }

// Status is a point-in-time view of the fetcher.
type Status struct {
	Text      string
	Quote     Quote
	Endpoint  Endpoint
	UpdatedAt time.Time // Last successful fetch, zero if none
	LastErr   error     // Error of the most recent attempt, nil on success
	Fetches   int       // Completed fetch attempts
}

// Fetcher owns the current display text. It fetches once on Start, then
// every interval, and whenever RefreshNow is called. Fetches run on a
// single worker goroutine, so at most one is in flight; refresh requests
// made during a fetch are coalesced into one follow-up fetch.
type Fetcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	source Source

	interval time.Duration
	limiter  *rate.Limiter
	dispatch Dispatcher

	// Published state
	text      string
	last      Outcome
	updatedAt time.Time
	fetches   int

	// Callbacks for text updates
	sinks []func(text string)

	// Control channels
	trigger chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}

	running bool
}

// NewFetcher creates a fetcher backed by source.
func NewFetcher(source Source, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		logger:   logger,
		source:   source,
		interval: DefaultInterval,
		limiter:  rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		dispatch: Direct,
		text:     PlaceholderText,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetInterval sets the scheduled refresh interval. It takes effect on the
// next Start.
func (f *Fetcher) SetInterval(interval time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if interval > 0 {
		f.interval = interval
	}
}

// SetMinInterval sets the minimum spacing between fetches. Zero disables
// pacing.
func (f *Fetcher) SetMinInterval(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d <= 0 {
		f.limiter = nil
		return
	}
	f.limiter = rate.NewLimiter(rate.Every(d), 1)
}

// SetSource replaces the fetch source. A fetch already in flight finishes
// with the old one.
func (f *Fetcher) SetSource(source Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source = source
}

// SetDispatcher sets how update callbacks reach the UI context.
func (f *Fetcher) SetDispatcher(d Dispatcher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d == nil {
		d = Direct
	}
	f.dispatch = d
}

// OnUpdate registers a sink that receives the display text after every
// completed fetch. Sinks run through the dispatcher.
func (f *Fetcher) OnUpdate(sink func(text string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sink)
}

// CurrentText returns the text to display right now.
func (f *Fetcher) CurrentText() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.text
}

// LastUpdated returns the time of the last successful fetch.
func (f *Fetcher) LastUpdated() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updatedAt
}

// Snapshot returns the current status.
func (f *Fetcher) Snapshot() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Status{
		Text:      f.text,
		Quote:     f.last.Quote,
		Endpoint:  f.last.Endpoint,
		UpdatedAt: f.updatedAt,
		LastErr:   f.last.Err,
		Fetches:   f.fetches,
	}
}

// Start fetches immediately and then on every interval until Stop is
// called or ctx is done.
func (f *Fetcher) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	interval := f.interval
	stopCh, doneCh := f.stopCh, f.doneCh
	f.mu.Unlock()

	f.RefreshNow()
	go f.loop(ctx, interval, stopCh, doneCh)

	f.logger.Debug("quote fetcher started", "interval", interval)
	return nil
}

// Stop stops the worker and waits for it to exit. An in-flight fetch is
// abandoned.
func (f *Fetcher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	close(f.stopCh)
	doneCh := f.doneCh
	f.mu.Unlock()

	<-doneCh
	f.logger.Debug("quote fetcher stopped")
}

// RefreshNow requests an out-of-band fetch. It never blocks.
func (f *Fetcher) RefreshNow() {
	select {
	case f.trigger <- struct{}{}:
	default:
		f.logger.Debug("refresh already pending")
	}
}

// loop is the worker goroutine.
func (f *Fetcher) loop(ctx context.Context, interval time.Duration, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.fetch(ctx)
		case <-f.trigger:
			f.fetch(ctx)
		}
	}
}

// fetch runs one attempt and publishes its result.
func (f *Fetcher) fetch(ctx context.Context) {
	f.mu.RLock()
	limiter := f.limiter
	source := f.source
	f.mu.RUnlock()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
	}

	outcome := source.FetchOnce(ctx)
	if ctx.Err() != nil {
		return
	}
	f.publish(outcome)
}

// publish records outcome and hands the text to the sinks exactly once.
func (f *Fetcher) publish(outcome Outcome) {
	text := outcome.Text()

	f.mu.Lock()
	f.text = text
	f.last = outcome
	f.fetches++
	if outcome.OK() {
		if outcome.FetchedAt.IsZero() {
			outcome.FetchedAt = time.Now()
		}
		f.updatedAt = outcome.FetchedAt
	}
	sinks := make([]func(string), len(f.sinks))
	copy(sinks, f.sinks)
	dispatch := f.dispatch
	f.mu.Unlock()

	if !outcome.OK() {
		f.logger.Warn("failed to fetch quote", "fetch_id", outcome.ID, "error", outcome.Err)
	}

	if len(sinks) == 0 {
		return
	}
	dispatch(func() {
		for _, sink := range sinks {
			sink(text)
		}
	})
}
