package theme

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// Scheme is the color scheme preference.
type Scheme string

const (
	SchemeSystem Scheme = "system"
	SchemeLight  Scheme = "light"
	SchemeDark   Scheme = "dark"
)

// ValidSchemes returns all valid color scheme values.
func ValidSchemes() []Scheme {
	return []Scheme{SchemeSystem, SchemeLight, SchemeDark}
}

// ParseScheme parses a color scheme name. An empty name means system.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeSystem:
		return SchemeSystem, nil
	case SchemeLight:
		return SchemeLight, nil
	case SchemeDark:
		return SchemeDark, nil
	}
	return "", fmt.Errorf("invalid color scheme %q, must be one of: %v", s, ValidSchemes())
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

var (
	White = Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black = Color{A: 0xff}
)

// Hex returns the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// CSS returns the color as a CSS rgba() value.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
}

func (c Color) String() string { return c.Hex() }

// TextColor returns the overlay text color: white on dark, black on light.
// isDarkMode is only consulted for SchemeSystem; a nil isDarkMode counts as
// light.
func TextColor(scheme Scheme, isDarkMode func() bool) Color {
	if IsDark(scheme, isDarkMode) {
		return White
	}
	return Black
}

// IsDark resolves scheme against the system appearance.
func IsDark(scheme Scheme, isDarkMode func() bool) bool {
	switch scheme {
	case SchemeDark:
		return true
	case SchemeLight:
		return false
	}
	return isDarkMode != nil && isDarkMode()
}

// Style holds the values the overlay stylesheet is rendered from.
type Style struct {
	FontSize     int
	CornerRadius int
	Text         Color
}

//go:embed styles/overlay.css
var overlayCSS string

var overlayTmpl = template.Must(template.New("overlay.css").Parse(overlayCSS))

// Stylesheet renders the overlay CSS for s.
func Stylesheet(s Style) (string, error) {
	var buf bytes.Buffer
	if err := overlayTmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render stylesheet: %w", err)
	}
	return buf.String(), nil
}
