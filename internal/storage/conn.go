package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidConnectionString is returned for malformed connection strings.
	ErrInvalidConnectionString = errors.New("invalid connection string")
	// ErrEmbeddedCredentials is returned when a connection string carries a
	// password. Credentials belong in the OS keyring.
	ErrEmbeddedCredentials = errors.New("connection string contains embedded credentials")
)

// IsPostgresConnString reports whether the config value looks like a
// PostgreSQL connection string rather than a file path.
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password, in either URL or DSN form.
func HasEmbeddedCredentials(connStr string) bool {
	if IsPostgresConnString(connStr) {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		_, isSet := parsedURL.User.Password()
		return isSet
	}

	for _, pair := range strings.Fields(connStr) {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
			return true
		}
	}
	return false
}

// ValidateConnString checks that a PostgreSQL connection string is well
// formed and free of embedded credentials.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if HasEmbeddedCredentials(connStr) {
		return ErrEmbeddedCredentials
	}
	if IsPostgresConnString(connStr) {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}
	return nil
}
