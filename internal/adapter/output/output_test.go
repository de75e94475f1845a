package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/hitotop/internal/quote"
)

func okOutcome() quote.Outcome {
	return quote.Outcome{
		Quote:     quote.Quote{Text: "A", Source: "B"},
		Endpoint:  quote.EndpointPrimary,
		ID:        "01HZX3T1Q6Y3JX8V0K4W2N9ABC",
		FetchedAt: time.Now().Add(-3 * time.Minute),
	}
}

func TestFromOutcome(t *testing.T) {
	r := FromOutcome(okOutcome())
	assert.Equal(t, "A —— 《B》", r.Text)
	require.NotNil(t, r.Quote)
	assert.Equal(t, "B", r.Quote.Source)
	assert.Equal(t, "primary", r.Endpoint)
	assert.NotNil(t, r.UpdatedAt)
	assert.Empty(t, r.Error)

	failed := FromOutcome(quote.Outcome{Err: errors.New("both down"), ID: "x"})
	assert.Equal(t, quote.FailureText, failed.Text)
	assert.Nil(t, failed.Quote)
	assert.Nil(t, failed.UpdatedAt)
	assert.Equal(t, "both down", failed.Error)
}

func TestFromStatus_Placeholder(t *testing.T) {
	r := FromStatus(quote.Status{Text: quote.PlaceholderText})
	assert.Equal(t, quote.PlaceholderText, r.Text)
	assert.Nil(t, r.Quote)
	assert.Nil(t, r.UpdatedAt)
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(FormatterOptions{}).Format(&buf, FromOutcome(okOutcome())))
	assert.Equal(t, "A —— 《B》\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPlainFormatter(FormatterOptions{ShowTime: true}).Format(&buf, FromOutcome(okOutcome())))
	assert.Equal(t, "A —— 《B》 (3 minutes ago)\n", buf.String())
}

func TestPlainFormatter_Template(t *testing.T) {
	var buf bytes.Buffer
	f := NewPlainFormatter(FormatterOptions{Template: "{{.Quote.Text}}|{{.Endpoint | upper}}|{{relative .UpdatedAt}}"})
	require.NoError(t, f.Format(&buf, FromOutcome(okOutcome())))
	assert.Equal(t, "A|PRIMARY|3 minutes ago\n", buf.String())
}

func TestPlainFormatter_InvalidTemplateFallsBack(t *testing.T) {
	var buf bytes.Buffer
	f := NewPlainFormatter(FormatterOptions{Template: "{{.Broken"})
	require.NoError(t, f.Format(&buf, FromOutcome(okOutcome())))
	assert.Equal(t, "A —— 《B》\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, FormatterOptions{}).Format(&buf, FromOutcome(okOutcome())))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "A —— 《B》", got["text"])
	assert.Equal(t, "primary", got["endpoint"])
	assert.Contains(t, got, "updated_at")
	assert.NotContains(t, got, "error")
	assert.Contains(t, buf.String(), "《B》", "no HTML escaping of non-ASCII")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	rec := FromOutcome(quote.Outcome{Err: errors.New("both down")})
	require.NoError(t, NewFormatter(FormatYAML, FormatterOptions{}).Format(&buf, rec))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, quote.FailureText, got["text"])
	assert.Equal(t, "both down", got["error"])
	assert.NotContains(t, got, "quote")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]FormatType{
		"":      FormatPlain,
		"plain": FormatPlain,
		"JSON":  FormatJSON,
		"yaml":  FormatYAML,
		"yml":   FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("dmenu")
	assert.Error(t, err)
}
