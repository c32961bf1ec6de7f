package bookings

import (
	"time"

	"studyhall/internal/pricing"

	"github.com/google/uuid"
)

// Booking is a claim on a resource for an inclusive [StartDate, EndDate]
// range. Rows are never deleted; every lifecycle change is a status
// transition.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ResourceID uuid.UUID `gorm:"type:uuid;index;not null" json:"resource_id"`
	VenueID    uuid.UUID `gorm:"type:uuid;index;not null" json:"venue_id"`

	// Holder identity: registered user or guest checkout
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	GuestName  string     `json:"guest_name,omitempty"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	GuestEmail string     `json:"guest_email,omitempty"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	Status        Status         `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'ACTIVE', 'COMPLETED', 'CANCELLED', 'REFUNDED');default:'PENDING'" json:"status"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(10);check:payment_status IN ('UNPAID', 'PAID');default:'UNPAID'" json:"payment_status"`
	TotalAmount   float64        `gorm:"not null" json:"total_amount"`
	BookingPeriod pricing.Period `gorm:"type:varchar(10);check:booking_period IN ('DAILY', 'WEEKLY', 'MONTHLY')" json:"booking_period"`
	BookingRef    string         `gorm:"unique;not null" json:"booking_ref"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Holder captures the reservation holder: a registered user id, or the guest
// triple for anonymous checkout. Both paths share the same overlap guarantee.
type Holder struct {
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	GuestName  string     `json:"guest_name,omitempty"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	GuestEmail string     `json:"guest_email,omitempty"`
}

// IsGuest reports whether the holder is an anonymous checkout identity
func (h Holder) IsGuest() bool {
	return h.UserID == nil
}

func (b *Booking) Holder() Holder {
	return Holder{
		UserID:     b.UserID,
		GuestName:  b.GuestName,
		GuestPhone: b.GuestPhone,
		GuestEmail: b.GuestEmail,
	}
}

// IsPaid reports whether payment has been reconciled for this booking
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// Overlaps reports whether the booking's range overlaps [start, end]
// inclusive on both ends.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}
