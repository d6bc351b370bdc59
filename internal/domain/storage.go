package domain

// SessionRegistry is a flat string store that lives for one session.
// Values set during a session are visible to every caller in that session
// and vanish when a new session begins.
type SessionRegistry interface {
	// GetString returns the value stored under name and whether it exists.
	// An existing empty value is reported as ("", true).
	GetString(name string) (string, bool)

	// SetString stores value under name.
	SetString(name, value string) error

	// ClearString removes name. Clearing a missing name is not an error.
	ClearString(name string) error
}

// FileStore reads and writes whole files. Implementations must make WriteAll
// atomic: a reader sees either the previous content or the new content.
type FileStore interface {
	Exists(path string) bool
	ReadAll(path string) ([]byte, error)
	WriteAll(path string, data []byte) error
	EnsureDirectory(path string) error

	// Delete removes path. Deleting a missing file is not an error.
	Delete(path string) error
}

// Notifier surfaces short, non-blocking messages to the user.
type Notifier interface {
	Notify(title, message string)
}

// NoOpNotifier discards notifications (for testing/batch operations).
type NoOpNotifier struct{}

func (NoOpNotifier) Notify(string, string) {}
