package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pterm/pterm"
)

func init() {
	// Table assertions compare cell text, not ANSI sequences.
	pterm.DisableColor()
}

func render(t *testing.T, data interface{}, format string, cfg *FormatConfig) (string, string) {
	t.Helper()
	m := NewManager()
	var out, info bytes.Buffer
	m.SetInfoWriter(&info)
	if err := m.Render(&out, data, format, cfg); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return out.String(), info.String()
}

func TestJSONFormat(t *testing.T) {
	data := map[string]interface{}{"name": "prod", "size": 4}
	out, _ := render(t, data, "json", nil)

	if !strings.Contains(out, "  \"name\": \"prod\"") {
		t.Errorf("expected 2-space indent, got:\n%s", out)
	}

	var back map[string]interface{}
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back["name"] != "prod" {
		t.Errorf("round-trip mismatch: %v", back)
	}
}

func TestYAMLFormat(t *testing.T) {
	data := []map[string]interface{}{{"id": "c1", "running": true}}
	out, _ := render(t, data, "yaml", nil)

	if !strings.Contains(out, "id: c1") || !strings.Contains(out, "running: true") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestTableMissingValueRendersNull(t *testing.T) {
	data := []interface{}{
		map[string]interface{}{"a": 1, "b": 2},
		map[string]interface{}{"a": 3},
	}
	out, _ := render(t, data, "table", &FormatConfig{Columns: []string{"a", "b"}})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got:\n%s", out)
	}
	if !strings.Contains(lines[0], "A") || !strings.Contains(lines[0], "B") {
		t.Errorf("header mismatch: %s", lines[0])
	}
	if !strings.Contains(lines[2], "NULL") {
		t.Errorf("missing value must render as NULL: %s", lines[2])
	}
}

func TestTableBooleansAndNested(t *testing.T) {
	data := []map[string]interface{}{{
		"active": true,
		"frozen": false,
		"spec":   map[string]interface{}{"nodes": 3},
	}}
	out, _ := render(t, data, "table", &FormatConfig{Columns: []string{"active", "frozen", "spec"}})

	if !strings.Contains(out, "TRUE") || !strings.Contains(out, "FALSE") {
		t.Errorf("booleans must render uppercase:\n%s", out)
	}
	if !strings.Contains(out, `{"nodes":3}`) {
		t.Errorf("nested mapping must render as compact JSON:\n%s", out)
	}
}

func TestTableColumnFiltering(t *testing.T) {
	data := []map[string]interface{}{{"a": 1, "b": 2, "c": 3}}

	out, _ := render(t, data, "table", &FormatConfig{Columns: []string{"b", "missing"}})
	header := strings.Split(out, "\n")[0]
	if strings.Contains(header, "MISSING") {
		t.Errorf("absent columns must be filtered out: %s", header)
	}
	if strings.Contains(header, "A") || strings.Contains(header, "C") {
		t.Errorf("unrequested columns leaked into narrow output: %s", header)
	}
}

func TestWideIncludesAllColumns(t *testing.T) {
	data := []map[string]interface{}{{"id": "c1", "name": "prod", "zone": "eu"}}

	out, _ := render(t, data, "wide", &FormatConfig{Columns: []string{"name"}})
	header := strings.Split(out, "\n")[0]

	// Specified columns come first, then the rest.
	if !strings.Contains(header, "NAME") || !strings.Contains(header, "ID") || !strings.Contains(header, "ZONE") {
		t.Errorf("wide output must include every column: %s", header)
	}
	if strings.Index(header, "NAME") > strings.Index(header, "ID") {
		t.Errorf("specified columns must be ordered first: %s", header)
	}
}

func TestEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{name: "nil", data: nil},
		{name: "empty sequence", data: []interface{}{}},
		{name: "empty mapping", data: map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, info := render(t, tt.data, "table", nil)
			if out != "" {
				t.Errorf("primary stream must stay empty, got %q", out)
			}
			if !strings.Contains(info, "no data") {
				t.Errorf("info channel missing no-data message: %q", info)
			}
		})
	}
}

func TestEmptyWithExplicitColumnsRendersHeaders(t *testing.T) {
	out, info := render(t, []interface{}{}, "table", &FormatConfig{Columns: []string{"id", "name"}})
	if !strings.Contains(out, "ID") || !strings.Contains(out, "NAME") {
		t.Errorf("explicit columns must still render headers:\n%s", out)
	}
	if info != "" {
		t.Errorf("no-data message must not appear, got %q", info)
	}
}

func TestTransforms(t *testing.T) {
	data := []map[string]interface{}{{
		"storage":   float64(3 * 1024 * 1024 * 1024),
		"cost":      float64(1234),
		"api-token": "super-secret-value",
	}}
	cfg := &FormatConfig{
		Columns: []string{"storage", "cost", "api-token"},
		Transforms: map[string]Transform{
			"storage":   HumanBytes,
			"cost":      CentsToDollars,
			"api-token": Redact,
		},
	}

	out, _ := render(t, data, "table", cfg)
	if !strings.Contains(out, "3.0 GiB") {
		t.Errorf("byte transform not applied:\n%s", out)
	}
	if !strings.Contains(out, "$12.34") {
		t.Errorf("cents transform not applied:\n%s", out)
	}
	if strings.Contains(out, "super-secret-value") || !strings.Contains(out, "***") {
		t.Errorf("secret not redacted:\n%s", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	m := NewManager()
	var out bytes.Buffer
	if err := m.Render(&out, map[string]interface{}{"a": 1}, "csv", nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
