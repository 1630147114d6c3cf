package eventform

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("event not found")
	ErrNotOwner       = errors.New("event belongs to another user")
	ErrNotEditing     = errors.New("only an existing event can be deleted")
	ErrSubmitInFlight = errors.New("a save is already in progress")
	ErrSubmitFailed   = errors.New("saving the event failed, please try again")
	ErrDeleteFailed   = errors.New("deleting the event failed, please try again")
	ErrUnknownField   = errors.New("unknown field")
	ErrFieldType      = errors.New("wrong value type for field")
)

// InvalidDraftError is returned by Submit when the draft does not validate.
// No request is sent in that case.
type InvalidDraftError struct {
	Errors ValidationErrors
}

// Error implements the error interface
func (e *InvalidDraftError) Error() string {
	return "invalid event: " + strings.Join(e.Errors.Messages(), " ")
}
