package theme

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Provider owns the CSS provider installed on the display. All methods must
// be called on the GTK main loop.
type Provider struct {
	mu       sync.Mutex
	logger   *slog.Logger
	provider *gtk.CSSProvider
	style    Style
	display  *gdk.Display
}

// NewProvider creates a provider for the given initial style.
func NewProvider(style Style, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		logger:   logger,
		provider: gtk.NewCSSProvider(),
		style:    style,
	}
}

// Apply installs the provider on display and loads the current style.
func (p *Provider) Apply(display *gdk.Display) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		p.logger.Warn("no display available, cannot apply theme")
		return
	}

	p.display = display
	gtk.StyleContextAddProviderForDisplay(
		display,
		p.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
	p.load()
}

// Update replaces the style and reloads the stylesheet.
func (p *Provider) Update(style Style) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if style == p.style {
		return
	}
	p.style = style
	p.load()
}

// SetTextColor changes only the text color.
func (p *Provider) SetTextColor(c Color) {
	p.mu.Lock()
	style := p.style
	p.mu.Unlock()

	style.Text = c
	p.Update(style)
}

// Style returns the current style.
func (p *Provider) Style() Style {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.style
}

func (p *Provider) load() {
	css, err := Stylesheet(p.style)
	if err != nil {
		p.logger.Error("failed to render stylesheet", "error", err)
		return
	}
	p.provider.LoadFromString(css)
	p.logger.Debug("loaded overlay stylesheet", "text", p.style.Text, "font_size", p.style.FontSize)
}
