package bookings

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrConflict is the sentinel for overlapping reservation attempts
	ErrConflict = errors.New("resource already booked for this range")
	// ErrResourceNotFound is returned when the requested resource does not exist
	ErrResourceNotFound = errors.New("resource not found")
	// ErrBookingNotFound is returned when a booking lookup misses
	ErrBookingNotFound = errors.New("booking not found")
)

// ConflictError carries the reservations that blocked a booking attempt so
// the caller can suggest alternative dates.
type ConflictError struct {
	ResourceID uuid.UUID
	Conflicts  []Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s already booked for this range (%d conflicting reservations)",
		e.ResourceID, len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
