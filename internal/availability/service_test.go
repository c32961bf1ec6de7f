package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"studyhall/internal/bookings"
	"studyhall/internal/pricing"
	"studyhall/internal/venues"

	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeBookingRepo serves overlap queries from an in-memory slice
type fakeBookingRepo struct {
	bookings.Repository
	rows []bookings.Booking
	err  error
}

func (f *fakeBookingRepo) FindOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time) ([]bookings.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []bookings.Booking
	for _, b := range f.rows {
		if b.ResourceID == resourceID && b.Status.HoldsResource() && b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindHoldingByVenue(ctx context.Context, venueID uuid.UUID, start, end time.Time) ([]bookings.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []bookings.Booking
	for _, b := range f.rows {
		if b.VenueID == venueID && b.Status.HoldsResource() && b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeVenueRepo struct {
	venues.Repository
	resources []venues.Resource
	err       error
}

func (f *fakeVenueRepo) ListResourcesByVenue(ctx context.Context, venueID uuid.UUID) ([]venues.Resource, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []venues.Resource
	for _, r := range f.resources {
		if r.VenueID == venueID {
			out = append(out, r)
		}
	}
	return out, nil
}

func holdingBooking(resourceID, venueID uuid.UUID, start, end time.Time, status bookings.Status) bookings.Booking {
	return bookings.Booking{
		ID:         uuid.New(),
		ResourceID: resourceID,
		VenueID:    venueID,
		StartDate:  pricing.Normalize(start),
		EndDate:    pricing.Normalize(end),
		Status:     status,
	}
}

func TestIsRangeFree_OverlapVectors(t *testing.T) {
	resourceID := uuid.New()
	venueID := uuid.New()

	tests := []struct {
		name      string
		existing  [2]time.Time
		requested [2]time.Time
		wantFree  bool
	}{
		{
			name:      "partial overlap at tail",
			existing:  [2]time.Time{date(2024, 1, 5), date(2024, 1, 10)},
			requested: [2]time.Time{date(2024, 1, 8), date(2024, 1, 12)},
			wantFree:  false,
		},
		{
			name:      "adjacent day after is free",
			existing:  [2]time.Time{date(2024, 1, 1), date(2024, 1, 10)},
			requested: [2]time.Time{date(2024, 1, 11), date(2024, 1, 15)},
			wantFree:  true,
		},
		{
			name:      "shared boundary day conflicts",
			existing:  [2]time.Time{date(2024, 1, 1), date(2024, 1, 10)},
			requested: [2]time.Time{date(2024, 1, 10), date(2024, 1, 15)},
			wantFree:  false,
		},
		{
			name:      "contained range conflicts",
			existing:  [2]time.Time{date(2024, 1, 1), date(2024, 1, 31)},
			requested: [2]time.Time{date(2024, 1, 10), date(2024, 1, 12)},
			wantFree:  false,
		},
		{
			name:      "same single day conflicts",
			existing:  [2]time.Time{date(2024, 1, 5), date(2024, 1, 5)},
			requested: [2]time.Time{date(2024, 1, 5), date(2024, 1, 5)},
			wantFree:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBookingRepo{rows: []bookings.Booking{
				holdingBooking(resourceID, venueID, tt.existing[0], tt.existing[1], bookings.StatusConfirmed),
			}}
			svc := NewService(repo, &fakeVenueRepo{}, nil, 0)

			result, err := svc.IsRangeFree(context.Background(), resourceID, tt.requested[0], tt.requested[1])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Free != tt.wantFree {
				t.Fatalf("Free = %v, want %v", result.Free, tt.wantFree)
			}
			if !tt.wantFree && len(result.Conflicts) == 0 {
				t.Fatalf("expected conflicts to be listed")
			}
		})
	}
}

func TestIsRangeFree_TerminalStatusesIgnored(t *testing.T) {
	resourceID := uuid.New()
	venueID := uuid.New()

	repo := &fakeBookingRepo{rows: []bookings.Booking{
		holdingBooking(resourceID, venueID, date(2024, 1, 1), date(2024, 1, 10), bookings.StatusCompleted),
		holdingBooking(resourceID, venueID, date(2024, 1, 1), date(2024, 1, 10), bookings.StatusCancelled),
	}}
	svc := NewService(repo, &fakeVenueRepo{}, nil, 0)

	result, err := svc.IsRangeFree(context.Background(), resourceID, date(2024, 1, 5), date(2024, 1, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Free {
		t.Fatalf("completed and cancelled bookings must not block availability")
	}
}

func TestIsRangeFree_UnknownResourceIsFree(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeVenueRepo{}, nil, 0)

	result, err := svc.IsRangeFree(context.Background(), uuid.New(), date(2024, 1, 1), date(2024, 1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Free {
		t.Fatalf("unknown resource should report free")
	}
}

func TestIsRangeFree_InvalidRange(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeVenueRepo{}, nil, 0)

	_, err := svc.IsRangeFree(context.Background(), uuid.New(), date(2024, 1, 10), date(2024, 1, 5))
	if !errors.Is(err, pricing.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestIsRangeFree_StoreErrorIsNotAvailability(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewService(&fakeBookingRepo{err: storeErr}, &fakeVenueRepo{}, nil, 0)

	result, err := svc.IsRangeFree(context.Background(), uuid.New(), date(2024, 1, 1), date(2024, 1, 2))
	if err == nil {
		t.Fatalf("expected store error to propagate, got result %+v", result)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestGetAvailabilityMap(t *testing.T) {
	venueID := uuid.New()
	freeSeat := venues.Resource{ID: uuid.New(), VenueID: venueID}
	takenSeat := venues.Resource{ID: uuid.New(), VenueID: venueID}

	bookingRepo := &fakeBookingRepo{rows: []bookings.Booking{
		holdingBooking(takenSeat.ID, venueID, date(2024, 2, 1), date(2024, 2, 7), bookings.StatusPending),
	}}
	venueRepo := &fakeVenueRepo{resources: []venues.Resource{freeSeat, takenSeat}}
	svc := NewService(bookingRepo, venueRepo, nil, 0)

	result, err := svc.GetAvailabilityMap(context.Background(), venueID, date(2024, 2, 5), date(2024, 2, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result))
	}
	if !result[freeSeat.ID.String()] {
		t.Fatalf("expected free seat to be available")
	}
	if result[takenSeat.ID.String()] {
		t.Fatalf("expected taken seat to be unavailable")
	}
}

func TestGetDateAvailability_EmptyDates(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeVenueRepo{}, nil, 0)

	result, err := svc.GetDateAvailability(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Fatalf("expected empty slice, got %v", result)
	}
}

func TestGetDateAvailability_PerDatePartition(t *testing.T) {
	venueID := uuid.New()
	seat := venues.Resource{ID: uuid.New(), VenueID: venueID}

	bookingRepo := &fakeBookingRepo{rows: []bookings.Booking{
		holdingBooking(seat.ID, venueID, date(2024, 3, 5), date(2024, 3, 10), bookings.StatusActive),
	}}
	venueRepo := &fakeVenueRepo{resources: []venues.Resource{seat}}
	svc := NewService(bookingRepo, venueRepo, nil, 0)

	dates := []time.Time{date(2024, 3, 4), date(2024, 3, 5), date(2024, 3, 10), date(2024, 3, 11)}
	result, err := svc.GetDateAvailability(context.Background(), venueID, dates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(result))
	}

	wantOccupied := []bool{false, true, true, false}
	for i, entry := range result {
		occupied := len(entry.Occupied) == 1
		if occupied != wantOccupied[i] {
			t.Fatalf("date %s: occupied=%v, want %v", entry.Date, occupied, wantOccupied[i])
		}
		if len(entry.Available)+len(entry.Occupied) != 1 {
			t.Fatalf("date %s: every resource must appear exactly once", entry.Date)
		}
	}
}
