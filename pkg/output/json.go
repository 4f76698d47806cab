package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter renders output as 2-space-indented JSON.
type JSONFormatter struct {
	indent string
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{indent: "  "}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes the data as indented JSON followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data interface{}, _ *FormatConfig) error {
	out, err := json.MarshalIndent(data, "", f.indent)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
