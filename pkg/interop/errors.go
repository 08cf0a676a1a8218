package interop

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDestination is matched by every *InvalidDestinationError.
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrInvalidMessage is matched by every *InvalidMessageError.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrDeliveryDelayNotSupported is returned when a delivery delay is
	// requested from a producer that has no way to delay messages.
	ErrDeliveryDelayNotSupported = errors.New("delivery delay is not supported")
)

// InvalidDestinationError reports a destination of a type the producer cannot send to.
type InvalidDestinationError struct {
	Required string
	Actual   interface{}
}

// NewInvalidDestinationError builds the error for the given required type name and supplied value.
func NewInvalidDestinationError(required string, actual interface{}) *InvalidDestinationError {
	return &InvalidDestinationError{Required: required, Actual: actual}
}

func (e *InvalidDestinationError) Error() string {
	return fmt.Sprintf("the destination must be an instance of %s but got %T", e.Required, e.Actual)
}

func (e *InvalidDestinationError) Unwrap() error { return ErrInvalidDestination }

// InvalidMessageError reports a message of a type the producer cannot translate.
type InvalidMessageError struct {
	Required string
	Actual   interface{}
}

// NewInvalidMessageError builds the error for the given required type name and supplied value.
func NewInvalidMessageError(required string, actual interface{}) *InvalidMessageError {
	return &InvalidMessageError{Required: required, Actual: actual}
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("the message must be an instance of %s but it is %T", e.Required, e.Actual)
}

func (e *InvalidMessageError) Unwrap() error { return ErrInvalidMessage }
