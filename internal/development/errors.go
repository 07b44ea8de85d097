package development

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState marks an achieved level without an achievement date
	ErrInvalidState = errors.New("invalid achievement state")
	// ErrInvalidActivity marks a structurally malformed activity
	ErrInvalidActivity = errors.New("invalid activity")
)

// InvalidStateError reports the activity and level whose date is missing
type InvalidStateError struct {
	PlayNumber int
	Level      int
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("play %d: level %d is marked achieved but has no achievement date", e.PlayNumber, e.Level)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}
