package authorization

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked rejects submissions once the attempt budget is spent.
	ErrLocked = errors.New("authorization locked: no attempts remaining")
	// ErrSubmissionInFlight rejects a submission while another one is outstanding.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrAlreadyAuthorized rejects submissions after a successful transfer.
	ErrAlreadyAuthorized = errors.New("transaction already authorized")
	// ErrSessionClosed is returned once the session has been torn down.
	ErrSessionClosed = errors.New("authorization session closed")
	// ErrPinFull rejects a keypad digit when the buffer already holds a full PIN.
	ErrPinFull = errors.New("pin already complete")
)

// ValidationError is a local input error. It never reaches the gateway.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsRejection reports whether err means the submission was refused locally
// without any state change.
func IsRejection(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrLocked) ||
		errors.Is(err, ErrSubmissionInFlight) ||
		errors.Is(err, ErrAlreadyAuthorized) ||
		errors.Is(err, ErrPinFull)
}
