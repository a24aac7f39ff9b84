package session

import "context"

// Storage defines the session storage API
type Storage interface {
	// Get retrieves a non-expired session by its ID.
	// Returns nil if no such session exists.
	Get(ctx context.Context, id string) (*Session, error)

	// Create stores a new session.
	// A session with the same ID is replaced.
	Create(ctx context.Context, ses *Session) error

	// Touch moves the expiration of an existing session
	Touch(ctx context.Context, id string, expires int64) error

	// Terminate terminates a session by its ID
	Terminate(ctx context.Context, id string) error

	// TerminateExpired terminates all sessions that are expired
	TerminateExpired(ctx context.Context) (int, error)
}
