// Package secrets masks sensitive fields when configuration is displayed.
// Values on disk stay in clear text; only the rendered view is masked.
package secrets

import (
	"regexp"
)

// sensitiveField matches field names that hold credentials.
var sensitiveField = regexp.MustCompile(`(?i)(password|secret|token)`)

// mask replaces a non-empty secret value for display.
const mask = "***"

// IsSensitive reports whether a field name denotes a credential.
func IsSensitive(field string) bool {
	return sensitiveField.MatchString(field)
}

// MaskValue masks a value when its field name is sensitive. Empty values
// pass through so unset credentials stay visibly unset.
func MaskValue(field string, value interface{}) interface{} {
	if !IsSensitive(field) {
		return value
	}
	if s, ok := value.(string); ok && s == "" {
		return value
	}
	if value == nil {
		return value
	}
	return mask
}

// MaskFields returns a copy of the row with every sensitive field masked.
// Nested mappings are masked recursively.
func MaskFields(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for k, v := range row {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = MaskFields(nested)
			continue
		}
		out[k] = MaskValue(k, v)
	}
	return out
}
