// Package common provides shared constants, types, and utilities
// used across the Tailtray application.
package common

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
	// NotifyError sends a notification marked urgent.
	NotifyError(title, message string) error
}

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// CredentialStore defines the interface for credential storage.
// Implementations may use the system keyring or an encrypted file.
type CredentialStore interface {
	// Store saves a secret under a key.
	Store(key, secret string) error
	// Get retrieves a secret for a key.
	Get(key string) (string, error)
	// Delete removes a secret for a key.
	Delete(key string) error
}
