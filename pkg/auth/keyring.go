package auth

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService namespaces CLI entries in the OS keyring.
const keyringService = "vantage-cli"

// StoreToken saves a profile's session token in the OS keyring. Opt-in
// alternative to the clear-text configuration file.
func StoreToken(profile, token string) error {
	if err := keyring.Set(keyringService, profile, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// LookupToken retrieves a profile's session token from the OS keyring,
// returning "" when none is stored.
func LookupToken(profile string) (string, error) {
	token, err := keyring.Get(keyringService, profile)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// EraseToken removes a profile's session token from the OS keyring. Missing
// entries are not an error.
func EraseToken(profile string) error {
	err := keyring.Delete(keyringService, profile)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to remove token from keyring: %w", err)
	}
	return nil
}
