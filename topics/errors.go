package topics

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured   = errors.New("guild has no usable output channel")
	ErrNotAllowed      = errors.New("requester holds no approved role")
	ErrNotAdmin        = errors.New("administrator permissions required")
	ErrCancelled       = errors.New("submission cancelled")
	ErrTimedOut        = errors.New("confirmation timed out")
	ErrArtifactMissing = errors.New("posted topic message is gone")
)

// ValidationError reports input over a length limit. It is returned before
// any side effect happens.
type ValidationError struct {
	Field string
	Limit int
	Got   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is too long: limit is %d characters, input is %d", e.Field, e.Limit, e.Got)
}
