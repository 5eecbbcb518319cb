package orchestrator

import "github.com/google/uuid"

// Severity classifies a status message for rendering.
type Severity int

const (
	// SeverityInfo is a routine confirmation.
	SeverityInfo Severity = iota
	// SeverityError reports a failed operation.
	SeverityError
)

// StatusMessage is a transient, single-slot notice shown to the user.
// A new message replaces the old one; the token ties each message to
// its own expiry timer so a stale timer cannot clear a newer message.
type StatusMessage struct {
	Text     string
	Severity Severity
	Token    uuid.UUID
}
