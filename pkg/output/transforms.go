package output

import "fmt"

// HumanBytes converts a byte count into a human-readable size.
func HumanBytes(value interface{}) interface{} {
	n, ok := toFloat(value)
	if !ok {
		return value
	}

	units := []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f %s", n, units[i])
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}

// CentsToDollars converts a monetary amount in cents to a dollar string.
func CentsToDollars(value interface{}) interface{} {
	n, ok := toFloat(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("$%.2f", n/100)
}

// Redact replaces a sensitive value with a fixed mask, keeping empty values
// empty so unset credentials stay visibly unset.
func Redact(value interface{}) interface{} {
	if s, ok := value.(string); ok && s == "" {
		return ""
	}
	if value == nil {
		return nil
	}
	return "***"
}

// toFloat widens the numeric types JSON decoding can produce.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
