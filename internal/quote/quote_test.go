package quote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_Display(t *testing.T) {
	tests := []struct {
		name  string
		quote Quote
		want  string
	}{
		{"with source", Quote{Text: "A", Source: "B"}, "A —— 《B》"},
		{"without source", Quote{Text: "A"}, "A"},
		{"unicode", Quote{Text: "人生若只如初见", Source: "木兰词"}, "人生若只如初见 —— 《木兰词》"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quote.Display())
		})
	}
}

func TestOutcome_Text(t *testing.T) {
	ok := Outcome{Quote: Quote{Text: "A", Source: "B"}}
	assert.True(t, ok.OK())
	assert.Equal(t, "A —— 《B》", ok.Text())

	failed := Outcome{Quote: Quote{Text: "stale"}, Err: errors.New("x")}
	assert.False(t, failed.OK())
	assert.Equal(t, FailureText, failed.Text())
}
