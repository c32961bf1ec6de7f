package payments

import "github.com/google/uuid"

// CheckoutRequest opens a payment for a priced date range. A registered user
// sends user_id; walk-ins send guest details with at least one contact field.
type CheckoutRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	StartDate  string    `json:"start_date" binding:"required,dateformat"`
	EndDate    string    `json:"end_date" binding:"required,dateformat"`
	Method     string    `json:"method" binding:"required,oneof=razorpay ekqr offline"`

	// DeferBooking skips the upfront hold; the reservation is created when
	// payment confirms
	DeferBooking bool `json:"defer_booking"`

	UserID     *uuid.UUID `json:"user_id,omitempty"`
	GuestName  string     `json:"guest_name,omitempty"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	GuestEmail string     `json:"guest_email,omitempty"`
}

// PendingListQuery filters the admin pending-transaction list
type PendingListQuery struct {
	Method string `form:"method" binding:"omitempty,oneof=razorpay ekqr offline"`
	Page   int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// WebhookPayload is the normalized body both gateway webhooks reduce to
type WebhookPayload struct {
	ExternalRef string `json:"external_ref"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}
