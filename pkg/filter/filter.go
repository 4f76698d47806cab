// Package filter evaluates --filter expressions against list-command rows.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled row predicate. Row fields are addressed by name, e.g.
// `status == "RUNNING" && size > 2`.
type Filter struct {
	program *vm.Program
	source  string
}

// Compile parses and type-checks a filter expression. A bad expression is a
// usage-grade error.
func Compile(expression string) (*Filter, error) {
	program, err := expr.Compile(expression,
		expr.Env(map[string]interface{}{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return &Filter{program: program, source: expression}, nil
}

// Match evaluates the predicate against one row. Rows that reference
// undefined fields evaluate to false rather than failing the whole listing.
func (f *Filter) Match(row map[string]interface{}) bool {
	out, err := expr.Run(f.program, row)
	if err != nil {
		return false
	}
	keep, ok := out.(bool)
	return ok && keep
}

// Apply keeps the rows matching the predicate, preserving order. Non-mapping
// elements are dropped.
func (f *Filter) Apply(data interface{}) interface{} {
	switch rows := data.(type) {
	case []interface{}:
		kept := make([]interface{}, 0, len(rows))
		for _, item := range rows {
			if row, ok := item.(map[string]interface{}); ok && f.Match(row) {
				kept = append(kept, item)
			}
		}
		return kept
	case []map[string]interface{}:
		kept := make([]map[string]interface{}, 0, len(rows))
		for _, row := range rows {
			if f.Match(row) {
				kept = append(kept, row)
			}
		}
		return kept
	default:
		return data
	}
}
