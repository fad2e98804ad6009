package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services. Controllers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Conflict and validation errors with a more specific meaning. They wrap the generic sentinels
// so callers can match either.
var (
	ErrAlreadyRegistered  = fmt.Errorf("%w: already registered for this event", ErrConflict)
	ErrEventFull          = fmt.Errorf("%w: event is full", ErrConflict)
	ErrFeedbackExists     = fmt.Errorf("%w: feedback already given for this event", ErrConflict)
	ErrAlreadyCheckedIn   = fmt.Errorf("%w: registration already checked in", ErrConflict)
	ErrNotRegistered      = fmt.Errorf("%w: not registered for this event", ErrForbidden)
	ErrEventUnavailable   = fmt.Errorf("%w: event is not open", ErrInvalidInput)
	ErrRegistrationClosed = fmt.Errorf("%w: registration is closed", ErrInvalidInput)
	ErrFeedbackTooEarly   = fmt.Errorf("%w: feedback is only accepted after the event starts", ErrInvalidInput)
	ErrInvalidRating      = fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	ErrInvalidCheckIn     = fmt.Errorf("%w: check-in token does not match", ErrInvalidInput)
	ErrCapacityBelowCount = fmt.Errorf("%w: capacity is below the current registration count", ErrInvalidInput)
)
