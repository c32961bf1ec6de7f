package bookings

// BookingListQuery holds filters for admin booking listings
type BookingListQuery struct {
	Status     string `form:"status"`
	VenueID    string `form:"venue_id"`
	ResourceID string `form:"resource_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}
