package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextColor(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }

	tests := []struct {
		name   string
		scheme Scheme
		isDark func() bool
		want   Color
	}{
		{"system dark", SchemeSystem, dark, White},
		{"system light", SchemeSystem, light, Black},
		{"system without probe", SchemeSystem, nil, Black},
		{"forced dark ignores probe", SchemeDark, light, White},
		{"forced light ignores probe", SchemeLight, dark, Black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextColor(tt.scheme, tt.isDark))
		})
	}
}

func TestTextColor_ReevaluatesProbe(t *testing.T) {
	isDark := false
	probe := func() bool { return isDark }

	assert.Equal(t, Black, TextColor(SchemeSystem, probe))
	isDark = true
	assert.Equal(t, White, TextColor(SchemeSystem, probe))
}

func TestParseScheme(t *testing.T) {
	for in, want := range map[string]Scheme{
		"":       SchemeSystem,
		"system": SchemeSystem,
		"Light":  SchemeLight,
		" dark ": SchemeDark,
	} {
		got, err := ParseScheme(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseScheme("sepia")
	assert.Error(t, err)
}

func TestColor_Formats(t *testing.T) {
	assert.Equal(t, "#ffffff", White.Hex())
	assert.Equal(t, "#000000", Black.String())
	assert.Equal(t, "#10203080", Color{R: 0x10, G: 0x20, B: 0x30, A: 0x80}.Hex())
	assert.Equal(t, "rgba(255,255,255,1)", White.CSS())
}

func TestStylesheet(t *testing.T) {
	css, err := Stylesheet(Style{FontSize: 16, CornerRadius: 10, Text: White})
	require.NoError(t, err)

	assert.Contains(t, css, "font-size: 16px;")
	assert.Contains(t, css, "border-radius: 10px;")
	assert.Contains(t, css, "color: rgba(255,255,255,1);")
	assert.Contains(t, css, "window.hitotop-overlay")
}
