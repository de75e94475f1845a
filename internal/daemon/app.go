package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/hitotop/internal/clipboard"
	"github.com/jmylchreest/hitotop/internal/config"
	"github.com/jmylchreest/hitotop/internal/menu"
	"github.com/jmylchreest/hitotop/internal/quote"
)

// NewQuoteClient builds the HTTP quote client from the configuration.
func NewQuoteClient(cfg *config.Config, logger *slog.Logger) *quote.Client {
	return quote.NewClient(
		quote.WithTimeout(cfg.Refresh.Timeout.Duration()),
		quote.WithVerifyTLS(cfg.Network.VerifyTLS),
		quote.WithUserAgent(cfg.Network.UserAgent),
		quote.WithLogger(logger),
	)
}

// Changes describes which parts of the configuration differ after a reload.
type Changes struct {
	Appearance bool // window size, font, corners or color scheme
	Gesture    bool
	Refresh    bool
	Network    bool
	Tray       bool
	Clipboard  bool
}

// Any reports whether anything changed.
func (c Changes) Any() bool {
	return c.Appearance || c.Gesture || c.Refresh || c.Network || c.Tray || c.Clipboard
}

// Diff compares two configurations.
func Diff(old, cur *config.Config) Changes {
	return Changes{
		Appearance: old.Window != cur.Window || old.Theme != cur.Theme,
		Gesture:    old.Gesture != cur.Gesture,
		Refresh:    old.Refresh != cur.Refresh,
		Network:    old.Network != cur.Network,
		Tray:       old.Tray != cur.Tray,
		Clipboard:  old.Clipboard != cur.Clipboard,
	}
}

// App is the application context. It is constructed once and handed to
// every surface; it implements menu.Handler.
type App struct {
	mu     sync.RWMutex
	logger *slog.Logger

	cfg     *config.Config
	fetcher *quote.Fetcher
	clip    clipboard.Writer

	// Rebuilds the fetch source when timeout or network settings change.
	// Nil when the fetcher was supplied by the caller.
	newSource func(cfg *config.Config) quote.Source

	// Set by Start, used to restart the fetcher when refresh settings change.
	ctx context.Context

	quit     func()
	quitOnce sync.Once
}

// NewApp creates an application context around an existing fetcher.
func NewApp(cfg *config.Config, fetcher *quote.Fetcher, clip clipboard.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if clip == nil {
		clip = clipboard.New(cfg.Clipboard.Command)
	}
	return &App{
		logger:  logger,
		cfg:     cfg,
		fetcher: fetcher,
		clip:    clip,
		quit:    func() {},
	}
}

// NewAppFromConfig wires a fetcher backed by the HTTP client.
func NewAppFromConfig(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	fetcher := quote.NewFetcher(NewQuoteClient(cfg, logger), logger)
	applyRefresh(fetcher, cfg)
	app := NewApp(cfg, fetcher, nil, logger)
	app.SetSourceFactory(func(cfg *config.Config) quote.Source {
		return NewQuoteClient(cfg, logger)
	})
	return app
}

// SetSourceFactory sets how a reload rebuilds the fetch source. Without one,
// timeout and network changes only take effect after a restart.
func (a *App) SetSourceFactory(fn func(cfg *config.Config) quote.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.newSource = fn
}

func applyRefresh(f *quote.Fetcher, cfg *config.Config) {
	f.SetInterval(cfg.Refresh.Interval.Duration())
	f.SetMinInterval(cfg.Refresh.MinInterval.Duration())
}

// SetQuitHandler sets the function Quit calls. It runs at most once.
func (a *App) SetQuitHandler(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fn == nil {
		fn = func() {}
	}
	a.quit = fn
}

// Fetcher returns the quote fetcher.
func (a *App) Fetcher() *quote.Fetcher {
	return a.fetcher
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Start starts the fetcher.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	if !a.Config().Network.VerifyTLS {
		a.logger.Warn("TLS certificate verification is disabled for quote endpoints; set network.verify_tls = true to enable it")
	}
	if err := a.fetcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start quote fetcher: %w", err)
	}
	return nil
}

// Stop stops the fetcher.
func (a *App) Stop() {
	a.fetcher.Stop()
}

// Refresh requests an immediate fetch.
func (a *App) Refresh() {
	a.logger.Debug("refresh requested")
	a.fetcher.RefreshNow()
}

// Copy places the current display text on the clipboard.
func (a *App) Copy() error {
	text := a.fetcher.CurrentText()

	a.mu.RLock()
	clip := a.clip
	a.mu.RUnlock()

	if err := clip.WriteText(text); err != nil {
		return fmt.Errorf("failed to copy quote: %w", err)
	}
	a.logger.Debug("copied quote to clipboard", "text", text)
	return nil
}

// Quit terminates the application.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		a.mu.RLock()
		quit := a.quit
		a.mu.RUnlock()

		a.logger.Info("quit requested")
		quit()
	})
}

// Text returns the current display text and the time of the last
// successful fetch.
func (a *App) Text() (string, time.Time) {
	status := a.fetcher.Snapshot()
	return status.Text, status.UpdatedAt
}

// Status returns the fetcher status.
func (a *App) Status() quote.Status {
	return a.fetcher.Snapshot()
}

// HandleAction runs a menu action and logs failures. It is called from the
// UI loop, so the clipboard write runs on its own goroutine.
func (a *App) HandleAction(action menu.Action) {
	if action == menu.ActionCopy {
		go func() {
			if err := a.Copy(); err != nil {
				a.logger.Warn("menu action failed", "action", action, "error", err)
			}
		}()
		return
	}
	if err := menu.Dispatch(a, action); err != nil {
		a.logger.Warn("menu action failed", "action", action, "error", err)
	}
}

// ApplyConfig swaps in a reloaded configuration and applies the parts the
// app owns: refresh pacing, request timeout, network settings and the
// clipboard backend. It returns what changed so the caller can update the UI.
func (a *App) ApplyConfig(cfg *config.Config) Changes {
	a.mu.Lock()
	old := a.cfg
	a.cfg = cfg
	changes := Diff(old, cfg)
	if changes.Clipboard {
		a.clip = clipboard.New(cfg.Clipboard.Command)
	}
	rebuild := a.newSource
	ctx := a.ctx
	a.mu.Unlock()

	sourceChanged := changes.Network || old.Refresh.Timeout != cfg.Refresh.Timeout
	if sourceChanged {
		if rebuild != nil {
			a.fetcher.SetSource(rebuild(cfg))
			a.logger.Info("quote client rebuilt", "timeout", cfg.Refresh.Timeout, "verify_tls", cfg.Network.VerifyTLS)
		} else {
			a.logger.Warn("request settings changed; restart hitotop to apply them")
		}
	}

	if changes.Refresh {
		a.fetcher.Stop()
		applyRefresh(a.fetcher, cfg)
		if ctx != nil {
			if err := a.fetcher.Start(ctx); err != nil {
				a.logger.Warn("failed to restart quote fetcher", "error", err)
			}
		}
		a.logger.Info("refresh settings updated", "interval", cfg.Refresh.Interval, "min_interval", cfg.Refresh.MinInterval)
	}
	return changes
}
