package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hitotop/internal/clipboard"
	"github.com/jmylchreest/hitotop/internal/config"
	"github.com/jmylchreest/hitotop/internal/menu"
	"github.com/jmylchreest/hitotop/internal/quote"
)

type staticSource struct {
	mu    sync.Mutex
	out   quote.Outcome
	calls int
}

func (s *staticSource) FetchOnce(ctx context.Context) quote.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.out
}

func (s *staticSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type failingClipboard struct{}

func (failingClipboard) WriteText(string) error { return errors.New("no display") }

func newTestApp(t *testing.T, out quote.Outcome) (*App, *staticSource, *clipboard.Memory, <-chan string) {
	t.Helper()
	src := &staticSource{out: out}
	f := quote.NewFetcher(src, nil)
	f.SetMinInterval(0)

	updates := make(chan string, 8)
	f.OnUpdate(func(text string) { updates <- text })

	clip := &clipboard.Memory{}
	app := NewApp(config.DefaultConfig(), f, clip, nil)
	return app, src, clip, updates
}

func waitText(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case text := <-ch:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return ""
	}
}

func TestApp_CopyWritesCurrentText(t *testing.T) {
	app, _, clip, updates := newTestApp(t, quote.Outcome{Quote: quote.Quote{Text: "A", Source: "B"}})

	require.NoError(t, app.Copy())
	assert.Equal(t, quote.PlaceholderText, clip.Text, "copy before the first fetch copies the placeholder")

	require.NoError(t, app.Start(context.Background()))
	defer app.Stop()
	waitText(t, updates)

	require.NoError(t, app.Copy())
	assert.Equal(t, "A —— 《B》", clip.Text)

	text, updated := app.Text()
	assert.Equal(t, "A —— 《B》", text)
	assert.False(t, updated.IsZero())
}

func TestApp_CopyError(t *testing.T) {
	f := quote.NewFetcher(&staticSource{}, nil)
	app := NewApp(config.DefaultConfig(), f, failingClipboard{}, nil)

	err := app.Copy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy quote")
}

func TestApp_RefreshTriggersFetch(t *testing.T) {
	app, src, _, updates := newTestApp(t, quote.Outcome{Quote: quote.Quote{Text: "A"}})

	require.NoError(t, app.Start(context.Background()))
	defer app.Stop()
	waitText(t, updates)

	app.HandleAction(menu.ActionRefresh)
	waitText(t, updates)
	assert.Equal(t, 2, src.Calls())
}

func TestApp_QuitRunsOnce(t *testing.T) {
	app, _, _, _ := newTestApp(t, quote.Outcome{})

	calls := 0
	app.SetQuitHandler(func() { calls++ })

	app.Quit()
	app.HandleAction(menu.ActionQuit)
	assert.Equal(t, 1, calls)
}

func TestDiff(t *testing.T) {
	base := config.DefaultConfig()

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   Changes
	}{
		{"nothing", func(c *config.Config) {}, Changes{}},
		{"font size", func(c *config.Config) { c.Window.FontSize = 20 }, Changes{Appearance: true}},
		{"color scheme", func(c *config.Config) { c.Theme.ColorScheme = "dark" }, Changes{Appearance: true}},
		{"modifier", func(c *config.Config) { c.Gesture.Modifier = "alt" }, Changes{Gesture: true}},
		{"interval", func(c *config.Config) { c.Refresh.Interval = config.Duration(time.Minute) }, Changes{Refresh: true}},
		{"tls", func(c *config.Config) { c.Network.VerifyTLS = true }, Changes{Network: true}},
		{"tray", func(c *config.Config) { c.Tray.Enabled = false }, Changes{Tray: true}},
		{"clipboard", func(c *config.Config) { c.Clipboard.Command = "wl-copy" }, Changes{Clipboard: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := config.DefaultConfig()
			tt.mutate(cur)
			got := Diff(base, cur)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != Changes{}, got.Any())
		})
	}
}

func TestApp_ApplyConfigRestartsFetcherOnRefreshChange(t *testing.T) {
	app, src, _, updates := newTestApp(t, quote.Outcome{Quote: quote.Quote{Text: "A"}})

	require.NoError(t, app.Start(context.Background()))
	defer app.Stop()
	waitText(t, updates)

	cfg := config.DefaultConfig()
	cfg.Refresh.Interval = config.Duration(2 * time.Hour)
	cfg.Refresh.MinInterval = 0
	changes := app.ApplyConfig(cfg)

	assert.True(t, changes.Refresh)
	assert.Same(t, cfg, app.Config())
	waitText(t, updates)
	assert.Equal(t, 2, src.Calls(), "restart fetches once")
}

func TestApp_ApplyConfigSwapsClipboard(t *testing.T) {
	app, _, clip, _ := newTestApp(t, quote.Outcome{})

	cfg := config.DefaultConfig()
	cfg.Clipboard.Command = "/nonexistent/clipboard-tool"
	changes := app.ApplyConfig(cfg)
	require.True(t, changes.Clipboard)

	assert.Error(t, app.Copy(), "new command backend is used")
	assert.Zero(t, clip.Writes)
}

type blockingClipboard struct {
	release chan struct{}
	written chan string
}

func (b *blockingClipboard) WriteText(text string) error {
	<-b.release
	b.written <- text
	return nil
}

func TestApp_HandleCopyDoesNotBlockCaller(t *testing.T) {
	f := quote.NewFetcher(&staticSource{}, nil)
	clip := &blockingClipboard{release: make(chan struct{}), written: make(chan string, 1)}
	app := NewApp(config.DefaultConfig(), f, clip, nil)

	returned := make(chan struct{})
	go func() {
		app.HandleAction(menu.ActionCopy)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("copy action blocked the caller")
	}

	close(clip.release)
	select {
	case text := <-clip.written:
		assert.Equal(t, quote.PlaceholderText, text)
	case <-time.After(2 * time.Second):
		t.Fatal("clipboard never written")
	}
}

func TestApp_ApplyConfigRebuildsSource(t *testing.T) {
	app, _, _, updates := newTestApp(t, quote.Outcome{Quote: quote.Quote{Text: "old"}})

	var built []*config.Config
	app.SetSourceFactory(func(cfg *config.Config) quote.Source {
		built = append(built, cfg)
		return &staticSource{out: quote.Outcome{Quote: quote.Quote{Text: "new"}}}
	})

	require.NoError(t, app.Start(context.Background()))
	defer app.Stop()
	assert.Equal(t, "old", waitText(t, updates))

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"timeout", func(c *config.Config) { c.Refresh.Timeout = config.Duration(3 * time.Second) }},
		{"tls", func(c *config.Config) { c.Network.VerifyTLS = true }},
	}

	for i, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.Refresh.MinInterval = 0
		tt.mutate(cfg)
		app.ApplyConfig(cfg)
		require.Len(t, built, i+1, tt.name)
		assert.Same(t, cfg, built[i], tt.name)
	}

	app.Refresh()
	assert.Equal(t, "new", drainUntil(t, updates, "new"))
}

// drainUntil reads updates until want arrives or the wait times out.
func drainUntil(t *testing.T, ch <-chan string, want string) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case text := <-ch:
			if text == want {
				return text
			}
		case <-deadline:
			t.Fatalf("never saw %q", want)
			return ""
		}
	}
}

func TestApp_ApplyConfigWithoutFactoryKeepsSource(t *testing.T) {
	app, src, _, updates := newTestApp(t, quote.Outcome{Quote: quote.Quote{Text: "A"}})

	require.NoError(t, app.Start(context.Background()))
	defer app.Stop()
	waitText(t, updates)

	cfg := config.DefaultConfig()
	cfg.Network.VerifyTLS = true
	changes := app.ApplyConfig(cfg)
	assert.True(t, changes.Network)

	app.Refresh()
	assert.Equal(t, "A", waitText(t, updates))
	assert.Equal(t, 2, src.Calls())
}
