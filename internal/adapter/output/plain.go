package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// PlainFormatter formats a record as a single line of text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter. An invalid template
// is ignored and the default layout is used.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes the record as plain text.
func (f *PlainFormatter) Format(w io.Writer, r Record) error {
	if f.template != nil {
		if err := f.template.Execute(w, r); err != nil {
			return fmt.Errorf("execute template: %w", err)
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder
	sb.WriteString(r.Text)
	if f.opts.ShowTime && r.UpdatedAt != nil {
		sb.WriteString(" (" + relativeTime(*r.UpdatedAt) + ")")
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"relative": func(t *time.Time) string {
			if t == nil {
				return "never"
			}
			return relativeTime(*t)
		},
		"upper": strings.ToUpper,
	}
}

// relativeTime renders t as "3 minutes ago".
func relativeTime(t time.Time) string {
	return humanize.Time(t)
}
