package records

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation blocks a save before any network call is made.
	ErrValidation = errors.New("invalid record")
	// ErrCredentialMissing blocks a save to a backend that needs a credential.
	ErrCredentialMissing = errors.New("backend credential missing")
)

// SaveError wraps a backend failure during Save. The in-memory store is left
// untouched when it is returned.
type SaveError struct {
	Backend string
	Date    string
	Err     error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s to %s failed: %v", e.Date, e.Backend, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
