package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

// nullCell is the placeholder for missing values.
const nullCell = "NULL"

// TableFormatter renders sequences of mappings as a pterm table. A single
// mapping is rendered as a one-row table.
type TableFormatter struct {
	style *pterm.TablePrinter
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{style: &pterm.DefaultTable}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Format renders the data as a table. The column set is cfg.Columns filtered
// to keys present in the data, or inferred from the first row when
// unspecified; cfg.Wide appends every remaining column after the specified
// ones.
func (f *TableFormatter) Format(w io.Writer, data interface{}, cfg *FormatConfig) error {
	if cfg == nil {
		cfg = &FormatConfig{}
	}

	rows, err := normalizeRows(data)
	if err != nil {
		return err
	}

	columns := selectColumns(rows, cfg)
	if len(columns) == 0 {
		return fmt.Errorf("no columns to render")
	}

	tableData := make([][]string, 0, len(rows)+1)
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = strings.ToUpper(col)
	}
	tableData = append(tableData, headers)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			value, ok := row[col]
			if !ok {
				cells[i] = nullCell
				continue
			}
			cells[i] = formatCell(value)
		}
		tableData = append(tableData, cells)
	}

	rendered, err := f.style.WithHasHeader(true).WithData(tableData).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = io.WriteString(w, rendered+"\n")
	return err
}

// normalizeRows coerces the accepted input shapes into a row slice.
func normalizeRows(data interface{}) ([]map[string]interface{}, error) {
	switch v := data.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{v}, nil
	case []map[string]interface{}:
		return v, nil
	case []interface{}:
		rows := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			row, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("cannot render %T as a table row", item)
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("cannot render %T as a table", data)
	}
}

// selectColumns resolves the column set: requested columns filtered to those
// present somewhere in the data, then (for wide output or when nothing was
// requested) the remaining keys in first-appearance order.
func selectColumns(rows []map[string]interface{}, cfg *FormatConfig) []string {
	// No rows: render exactly the requested header set.
	if len(rows) == 0 {
		return cfg.Columns
	}

	present := make(map[string]bool)
	var order []string
	for _, row := range rows {
		// Maps do not keep insertion order; sort each row's keys so the
		// inferred column order is at least deterministic.
		for _, key := range sortedKeys(row) {
			if !present[key] {
				present[key] = true
				order = append(order, key)
			}
		}
	}

	var columns []string
	seen := make(map[string]bool)
	for _, col := range cfg.Columns {
		if present[col] && !seen[col] {
			columns = append(columns, col)
			seen[col] = true
		}
	}

	if len(cfg.Columns) == 0 || cfg.Wide {
		for _, col := range order {
			if !seen[col] {
				columns = append(columns, col)
				seen[col] = true
			}
		}
	}
	return columns
}

func sortedKeys(row map[string]interface{}) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatCell renders one value: NULL for nil, uppercase booleans, compact
// JSON for nested structures.
func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return nullCell
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return v
	case map[string]interface{}, []interface{}:
		compact, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(compact)
	default:
		return fmt.Sprintf("%v", v)
	}
}
