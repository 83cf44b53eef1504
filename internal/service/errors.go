package service

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationClosed   = errors.New("registration is closed for this event")
	ErrCapacityExceeded     = errors.New("registration limit reached")
	ErrInvalidState         = errors.New("registration is not in a state that allows this action")
	ErrAmountMismatch       = errors.New("claimed amount does not match the ticket price")
	ErrPaymentsDisabled     = errors.New("payment proof is not accepted for this event")
	ErrRegistrationFailed   = errors.New("registration could not be saved")
	ErrVerificationFailed   = errors.New("verification could not be saved")
)

// InputError is a caller mistake that no retry can fix.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func inputError(field, msg string) error {
	return &InputError{Field: field, Message: msg}
}
