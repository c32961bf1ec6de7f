package availability

import (
	"context"
	"fmt"
	"time"

	"studyhall/internal/bookings"
	"studyhall/internal/pricing"
	"studyhall/internal/venues"
	"studyhall/pkg/cache"

	"github.com/google/uuid"
)

// RangeResult reports whether a resource is free for a range and, if not,
// which reservations block it.
type RangeResult struct {
	Free      bool               `json:"free"`
	Conflicts []bookings.Booking `json:"conflicts,omitempty"`
}

// DateAvailability partitions a venue's resources for a single date
type DateAvailability struct {
	Date      string      `json:"date"`
	Available []uuid.UUID `json:"available"`
	Occupied  []uuid.UUID `json:"occupied"`
}

// Service answers availability questions against booking rows. The
// denormalized is_available flag on resources is never consulted: the flag
// can lag, the rows cannot.
type Service interface {
	IsRangeFree(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (*RangeResult, error)
	GetAvailabilityMap(ctx context.Context, venueID uuid.UUID, start, end time.Time) (map[string]bool, error)
	GetDateAvailability(ctx context.Context, venueID uuid.UUID, dates []time.Time) ([]DateAvailability, error)
}

type service struct {
	bookingRepo bookings.Repository
	venueRepo   venues.Repository
	cache       cache.Service
	cacheTTL    time.Duration
}

// NewService creates the availability service. cacheService may be nil;
// reads then always go to the database.
func NewService(bookingRepo bookings.Repository, venueRepo venues.Repository, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		bookingRepo: bookingRepo,
		venueRepo:   venueRepo,
		cache:       cacheService,
		cacheTTL:    cacheTTL,
	}
}

// IsRangeFree checks a single resource for the inclusive range [start, end].
// An unknown resource id yields no conflicts and is reported free; resource
// existence is the reservation path's concern. A store error is returned
// as-is so callers never mistake a failed query for availability.
func (s *service) IsRangeFree(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (*RangeResult, error) {
	start = pricing.Normalize(start)
	end = pricing.Normalize(end)
	if start.After(end) {
		return nil, pricing.ErrInvalidRange
	}

	conflicts, err := s.bookingRepo.FindOverlapping(ctx, resourceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}

	return &RangeResult{
		Free:      len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// GetAvailabilityMap returns resource id -> free for every resource of the
// venue over the range. Results are cached briefly; writers invalidate by
// venue on reservation create and expiry release.
func (s *service) GetAvailabilityMap(ctx context.Context, venueID uuid.UUID, start, end time.Time) (map[string]bool, error) {
	start = pricing.Normalize(start)
	end = pricing.Normalize(end)
	if start.After(end) {
		return nil, pricing.ErrInvalidRange
	}

	if s.cache != nil {
		key := cache.VenueAvailabilityKey(venueID.String(), start.Format("2006-01-02"), end.Format("2006-01-02"))
		var cached map[string]bool
		err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
			return s.buildAvailabilityMap(ctx, venueID, start, end)
		}, &cached)
		if err == nil {
			return cached, nil
		}
		// fall through to an uncached read on any cache path error
	}

	return s.buildAvailabilityMap(ctx, venueID, start, end)
}

func (s *service) buildAvailabilityMap(ctx context.Context, venueID uuid.UUID, start, end time.Time) (map[string]bool, error) {
	resources, err := s.venueRepo.ListResourcesByVenue(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("resource listing failed: %w", err)
	}

	holding, err := s.bookingRepo.FindHoldingByVenue(ctx, venueID, start, end)
	if err != nil {
		return nil, fmt.Errorf("availability query failed: %w", err)
	}

	occupied := make(map[uuid.UUID]bool, len(holding))
	for _, b := range holding {
		occupied[b.ResourceID] = true
	}

	result := make(map[string]bool, len(resources))
	for _, r := range resources {
		result[r.ID.String()] = !occupied[r.ID]
	}

	return result, nil
}

// GetDateAvailability evaluates the overlap predicate independently per
// date: date d conflicts with a reservation iff start <= d <= end. An empty
// date list returns an empty slice, not an error.
func (s *service) GetDateAvailability(ctx context.Context, venueID uuid.UUID, dates []time.Time) ([]DateAvailability, error) {
	results := make([]DateAvailability, 0, len(dates))
	if len(dates) == 0 {
		return results, nil
	}

	resources, err := s.venueRepo.ListResourcesByVenue(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("resource listing failed: %w", err)
	}

	// One query spanning all requested dates, partitioned in memory
	minDate := pricing.Normalize(dates[0])
	maxDate := minDate
	for _, d := range dates[1:] {
		nd := pricing.Normalize(d)
		if nd.Before(minDate) {
			minDate = nd
		}
		if nd.After(maxDate) {
			maxDate = nd
		}
	}

	holding, err := s.bookingRepo.FindHoldingByVenue(ctx, venueID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("availability query failed: %w", err)
	}

	for _, d := range dates {
		date := pricing.Normalize(d)

		occupied := make(map[uuid.UUID]bool)
		for _, b := range holding {
			if !b.StartDate.After(date) && !b.EndDate.Before(date) {
				occupied[b.ResourceID] = true
			}
		}

		entry := DateAvailability{
			Date:      date.Format("2006-01-02"),
			Available: make([]uuid.UUID, 0, len(resources)),
			Occupied:  make([]uuid.UUID, 0),
		}
		for _, r := range resources {
			if occupied[r.ID] {
				entry.Occupied = append(entry.Occupied, r.ID)
			} else {
				entry.Available = append(entry.Available, r.ID)
			}
		}
		results = append(results, entry)
	}

	return results, nil
}
