package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats records as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes the record as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, r Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
