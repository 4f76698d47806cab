// Package output renders normalized API results as JSON, YAML, or a table.
//
// Input is the uniform response shape flowing out of the transport client: a
// single mapping, a sequence of mappings, or nil. Field-level transforms
// (unit conversion, redaction) run before any format-specific rendering.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Transform converts one field value before rendering.
type Transform func(interface{}) interface{}

// FormatConfig controls rendering.
type FormatConfig struct {
	// Columns is the ordered set of keys to show in tables. Empty means
	// infer from the first row. Keys absent from the data are dropped.
	Columns []string

	// Wide includes all available columns, keeping Columns ordered first.
	Wide bool

	// Transforms maps field names to value transforms, applied to every
	// row before formatting.
	Transforms map[string]Transform
}

// Formatter renders a normalized response in one output format.
type Formatter interface {
	Name() string
	Format(w io.Writer, data interface{}, cfg *FormatConfig) error
}

// Manager dispatches rendering to the formatter matching the requested
// format name. Empty input is reported on the info channel instead of the
// primary output stream.
type Manager struct {
	formatters map[string]Formatter
	infoOut    io.Writer
}

// NewManager creates a manager with the JSON, YAML, and table formatters
// registered. Informational no-data messages go to stderr.
func NewManager() *Manager {
	m := &Manager{
		formatters: make(map[string]Formatter),
		infoOut:    os.Stderr,
	}
	m.Register(NewJSONFormatter())
	m.Register(NewYAMLFormatter())
	m.Register(NewTableFormatter())
	return m
}

// Register adds a formatter under its own name.
func (m *Manager) Register(f Formatter) {
	m.formatters[f.Name()] = f
}

// SetInfoWriter redirects the no-data channel; used by tests.
func (m *Manager) SetInfoWriter(w io.Writer) {
	m.infoOut = w
}

// Render writes data in the named format. "wide" selects the table
// formatter with all columns included. Explicitly requested columns still
// produce a header row for empty sequences; all other empty input prints an
// informational message on the info channel.
func (m *Manager) Render(w io.Writer, data interface{}, format string, cfg *FormatConfig) error {
	if cfg == nil {
		cfg = &FormatConfig{}
	}
	name := strings.ToLower(format)
	if name == "wide" {
		name = "table"
		cfg.Wide = true
	}

	f, ok := m.formatters[name]
	if !ok {
		return fmt.Errorf("unknown output format %q", format)
	}

	data = applyTransforms(data, cfg.Transforms)

	if isEmpty(data) {
		if name == "table" && len(cfg.Columns) > 0 {
			return f.Format(w, []map[string]interface{}{}, cfg)
		}
		_, err := fmt.Fprintln(m.infoOut, "no data")
		return err
	}

	return f.Format(w, data, cfg)
}

// isEmpty reports whether the response carries nothing renderable.
func isEmpty(data interface{}) bool {
	switch v := data.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(v) == 0
	case []map[string]interface{}:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	}
	return false
}

// applyTransforms rewrites matching fields on every row. The input is left
// untouched; transformed copies are returned.
func applyTransforms(data interface{}, transforms map[string]Transform) interface{} {
	if len(transforms) == 0 {
		return data
	}

	transformRow := func(row map[string]interface{}) map[string]interface{} {
		out := make(map[string]interface{}, len(row))
		for k, v := range row {
			if t, ok := transforms[k]; ok {
				out[k] = t(v)
			} else {
				out[k] = v
			}
		}
		return out
	}

	switch v := data.(type) {
	case map[string]interface{}:
		return transformRow(v)
	case []map[string]interface{}:
		out := make([]map[string]interface{}, len(v))
		for i, row := range v {
			out[i] = transformRow(row)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			if row, ok := item.(map[string]interface{}); ok {
				out[i] = transformRow(row)
			} else {
				out[i] = item
			}
		}
		return out
	}
	return data
}
