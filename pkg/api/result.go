package api

import "fmt"

// Result is the uniform outcome of one API call: exactly one of Data or Err
// is populated, except for empty 204 responses where both are nil. Transport
// failures are carried as values here, never surfaced as Go errors.
type Result struct {
	// Data is the decoded response body: a map, a slice of maps, or nil.
	Data interface{}

	// Err is the decoded error body. It always carries "message" and
	// "success": false.
	Err map[string]interface{}

	// Raw is the wire payload Data was decoded from, kept so JSON display
	// can preserve the server's key order. Nil whenever Data no longer
	// mirrors the wire payload.
	Raw []byte
}

// OK reports whether the call produced no error half.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message returns the error message, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	if msg, ok := r.Err["message"].(string); ok {
		return msg
	}
	return fmt.Sprintf("%v", r.Err)
}

// errResult builds the error half of a result from a message.
func errResult(format string, args ...interface{}) Result {
	return Result{Err: map[string]interface{}{
		"message": fmt.Sprintf(format, args...),
		"success": false,
	}}
}
