package bookings

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// HoldingStatuses are the statuses in which a booking holds its resource.
// Only bookings in these statuses participate in overlap checks.
var HoldingStatuses = []Status{StatusPending, StatusConfirmed, StatusActive}

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// HoldsResource reports whether a booking in this status blocks overlapping
// reservations for the same resource.
func (s Status) HoldsResource() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the booking lifecycle
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

func (s PaymentStatus) String() string {
	return string(s)
}
