package config

import "fmt"

// InvalidError reports a malformed or inconsistent configuration file. It is
// raised at load time and treated as fatal by the entry point; the message
// carries the offending file path.
type InvalidError struct {
	Path   string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid configuration at %s: %s", e.Path, e.Reason)
}

// ProfileError reports an invalid operation on a named profile (duplicate
// add, missing profile, removing the active profile). Handlers catch it and
// report a user-facing message.
type ProfileError struct {
	Name   string
	Reason string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile %q: %s", e.Name, e.Reason)
}
