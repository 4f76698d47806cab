package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders output as block-style YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Format writes the data as YAML with 2-space indentation.
func (f *YAMLFormatter) Format(w io.Writer, data interface{}, _ *FormatConfig) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	enc.SetIndent(2)

	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
