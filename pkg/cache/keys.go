package cache

import "fmt"

// Key builders for the availability read path. Keeping these in one place
// keeps invalidation patterns aligned with what the writers delete.

// VenueAvailabilityKey caches the per-venue availability map for a date range.
func VenueAvailabilityKey(venueID, start, end string) string {
	return fmt.Sprintf("availability:venue:%s:%s:%s", venueID, start, end)
}

// VenueAvailabilityPattern matches every cached range for a venue.
func VenueAvailabilityPattern(venueID string) string {
	return fmt.Sprintf("availability:venue:%s:*", venueID)
}
