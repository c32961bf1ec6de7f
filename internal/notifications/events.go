package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventPaymentFailed    EventType = "payment.failed"
)

// BookingEvent is the message published to the booking-events topic when a
// payment finalizes. Downstream consumers (receipts, occupancy dashboards)
// key off Type.
type BookingEvent struct {
	ID        uuid.UUID  `json:"id"`
	Type      EventType  `json:"type"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	VenueID   *uuid.UUID `json:"venue_id,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`

	TransactionID uuid.UUID `json:"transaction_id"`
	BookingRef    string    `json:"booking_ref,omitempty"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType EventType, txnID uuid.UUID) *BookingEvent {
	return &BookingEvent{
		ID:            uuid.New(),
		Type:          eventType,
		TransactionID: txnID,
		OccurredAt:    time.Now(),
	}
}

// ToJSON serializes the event for the wire
func (e *BookingEvent) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return data, nil
}

// PartitionKey routes all events for one booking to the same partition so
// consumers see them in order. Falls back to the transaction id for events
// without a booking.
func (e *BookingEvent) PartitionKey() string {
	if e.BookingID != nil {
		return e.BookingID.String()
	}
	return e.TransactionID.String()
}
