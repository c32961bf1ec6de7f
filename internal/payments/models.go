package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"studyhall/internal/pricing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Transaction is one payment attempt. BookingID stays nil in flows where the
// gateway confirms payment before the reservation is materialized; the
// Intent blob then carries everything needed to create it.
type Transaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`

	Amount      float64 `gorm:"not null" json:"amount"`
	Method      Method  `gorm:"type:varchar(20);check:method IN ('razorpay', 'ekqr', 'offline');not null" json:"method"`
	ExternalRef string  `gorm:"index" json:"external_ref,omitempty"`
	Status      Status  `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED');default:'PENDING'" json:"status"`

	// Intent holds the original booking request so recovery can rebuild the
	// reservation without a client replay. Required while status is PENDING.
	Intent datatypes.JSON `gorm:"type:jsonb" json:"intent,omitempty"`

	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName sets the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the transaction has been finalized
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Method string

const (
	MethodRazorpay Method = "razorpay"
	MethodEKQR     Method = "ekqr"
	MethodOffline  Method = "offline"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodRazorpay, MethodEKQR, MethodOffline:
		return true
	}
	return false
}

// UsesGateway reports whether the method has an external gateway to poll
func (m Method) UsesGateway() bool {
	return m == MethodRazorpay || m == MethodEKQR
}

// ReservationIntent is the typed payload stored in Transaction.Intent. It is
// self-sufficient: the reconciler can materialize the reservation from it
// alone.
type ReservationIntent struct {
	ResourceID uuid.UUID      `json:"resource_id"`
	VenueID    uuid.UUID      `json:"venue_id"`
	StartDate  string         `json:"start_date"` // YYYY-MM-DD
	EndDate    string         `json:"end_date"`
	Amount     float64        `json:"amount"`
	Period     pricing.Period `json:"period"`

	UserID     *uuid.UUID `json:"user_id,omitempty"`
	GuestName  string     `json:"guest_name,omitempty"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	GuestEmail string     `json:"guest_email,omitempty"`
}

// Encode serializes the intent for storage on the transaction row
func (i ReservationIntent) Encode() (datatypes.JSON, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reservation intent: %w", err)
	}
	return datatypes.JSON(data), nil
}

// DecodeIntent parses the stored intent blob
func (t *Transaction) DecodeIntent() (*ReservationIntent, error) {
	if len(t.Intent) == 0 {
		return nil, fmt.Errorf("transaction %s has no stored intent", t.ID)
	}
	var intent ReservationIntent
	if err := json.Unmarshal(t.Intent, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode reservation intent: %w", err)
	}
	return &intent, nil
}

// Dates parses the intent's date strings
func (i *ReservationIntent) Dates() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", i.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid intent start date %q: %w", i.StartDate, err)
	}
	end, err = time.Parse("2006-01-02", i.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid intent end date %q: %w", i.EndDate, err)
	}
	return start, end, nil
}
