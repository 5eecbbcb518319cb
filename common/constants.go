// Package common provides shared constants, types, and utilities
// used across the Tailtray application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.github.tailtray"
	// AppName is the display name of the application.
	AppName = "Tailtray"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "tailtray"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	HistoryFileName     = "history.db"
	CredentialsFileName = ".credentials"
	LogFileName         = "tailtray.log"
)

// Default timeouts and intervals.
const (
	// CommandTimeout bounds a single tailscale CLI invocation. The CLI
	// can hang on network-dependent operations, so every invocation
	// carries a deadline.
	CommandTimeout = 30 * time.Second
	// ReceiveTimeout bounds a Taildrop receive, which blocks until a
	// peer sends something or the deadline passes.
	ReceiveTimeout = 30 * time.Second
	// StatusClearDelay is how long a transient status message stays
	// visible before it expires.
	StatusClearDelay = 5 * time.Second
	// HistoryRetention is how long recorded operations are kept before
	// being pruned at startup.
	HistoryRetention = 90 * 24 * time.Hour
)

// UI constants.
const (
	// DefaultWindowWidth is the default control window width.
	DefaultWindowWidth = 480
	// DefaultWindowHeight is the default control window height.
	DefaultWindowHeight = 560
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
