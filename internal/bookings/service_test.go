package bookings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"studyhall/internal/pricing"

	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// memoryRepo implements Repository against a mutex-guarded slice. Create
// serializes the overlap check and insert the way the row lock does in
// Postgres.
type memoryRepo struct {
	Repository
	mu   sync.Mutex
	rows []*Booking
}

func (m *memoryRepo) CreateReservationWithOverlapCheck(ctx context.Context, booking *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var conflicts []Booking
	for _, b := range m.rows {
		if b.ResourceID == booking.ResourceID && b.Status.HoldsResource() && b.Overlaps(booking.StartDate, booking.EndDate) {
			conflicts = append(conflicts, *b)
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{ResourceID: booking.ResourceID, Conflicts: conflicts}
	}

	booking.ID = uuid.New()
	m.rows = append(m.rows, booking)
	return nil
}

func (m *memoryRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (m *memoryRepo) MarkPaid(ctx context.Context, id uuid.UUID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.ID == id {
			b.PaymentStatus = PaymentStatusPaid
			b.Status = status
			return nil
		}
	}
	return ErrBookingNotFound
}

func (m *memoryRepo) ActivateStarted(ctx context.Context, today time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.rows {
		if b.Status == StatusConfirmed && !b.StartDate.After(today) && !b.EndDate.Before(today) {
			b.Status = StatusActive
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) ReleaseExpired(ctx context.Context, today time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.rows {
		if (b.Status == StatusActive || b.Status == StatusConfirmed) && b.EndDate.Before(today) {
			b.Status = StatusCompleted
			count++
		}
	}
	return count, nil
}

func validRequest(resourceID, venueID uuid.UUID) ReserveRequest {
	userID := uuid.New()
	return ReserveRequest{
		ResourceID: resourceID,
		VenueID:    venueID,
		StartDate:  date(2024, 5, 1),
		EndDate:    date(2024, 5, 7),
		Holder:     Holder{UserID: &userID},
		Amount:     600,
		Period:     pricing.PeriodWeekly,
	}
}

func TestReserveCreatesPendingUnpaid(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	booking, err := svc.Reserve(context.Background(), validRequest(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", booking.Status)
	}
	if booking.PaymentStatus != PaymentStatusUnpaid {
		t.Fatalf("expected UNPAID, got %s", booking.PaymentStatus)
	}
	if !strings.HasPrefix(booking.BookingRef, "SHB-") {
		t.Fatalf("expected booking reference, got %q", booking.BookingRef)
	}
}

func TestReserveConflictReturnsTypedError(t *testing.T) {
	resourceID := uuid.New()
	venueID := uuid.New()
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	if _, err := svc.Reserve(context.Background(), validRequest(resourceID, venueID)); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	_, err := svc.Reserve(context.Background(), validRequest(resourceID, venueID))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected errors.Is(err, ErrConflict)")
	}
	if len(conflict.Conflicts) != 1 {
		t.Fatalf("expected 1 listed conflict, got %d", len(conflict.Conflicts))
	}
}

func TestReserveGuestBooking(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	req := validRequest(uuid.New(), uuid.New())
	req.Holder = Holder{GuestName: "Walk In", GuestPhone: "9876543210"}

	booking, err := svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.UserID != nil {
		t.Fatalf("guest booking must not carry a user id")
	}
	if booking.GuestPhone != "9876543210" {
		t.Fatalf("guest contact not persisted")
	}
}

func TestReserveGuestWithoutContactRejected(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)

	req := validRequest(uuid.New(), uuid.New())
	req.Holder = Holder{GuestName: "No Contact"}

	if _, err := svc.Reserve(context.Background(), req); err == nil {
		t.Fatalf("expected rejection for guest without phone or email")
	}
}

func TestReserveInvalidRange(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)

	req := validRequest(uuid.New(), uuid.New())
	req.StartDate = date(2024, 5, 10)
	req.EndDate = date(2024, 5, 1)

	if _, err := svc.Reserve(context.Background(), req); !errors.Is(err, pricing.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	resourceID := uuid.New()
	venueID := uuid.New()
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), validRequest(resourceID, venueID))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created, conflicted := 0, 0
	for err := range results {
		if err == nil {
			created++
			continue
		}
		if errors.Is(err, ErrConflict) {
			conflicted++
			continue
		}
		t.Fatalf("unexpected error: %v", err)
	}

	if created != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", created)
	}
	if conflicted != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicted)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	booking, err := svc.Reserve(context.Background(), validRequest(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.ConfirmPayment(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PaymentStatus != PaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", first.PaymentStatus)
	}

	second, err := svc.ConfirmPayment(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("second confirm must be a no-op, got %v", err)
	}
	if second.Status != first.Status || second.PaymentStatus != first.PaymentStatus {
		t.Fatalf("second confirm changed state: %s/%s vs %s/%s",
			second.Status, second.PaymentStatus, first.Status, first.PaymentStatus)
	}
}

func TestReleaseExpiredIdempotent(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	past := validRequest(uuid.New(), uuid.New())
	past.StartDate = date(2020, 1, 1)
	past.EndDate = date(2020, 1, 7)

	booking, err := svc.Reserve(context.Background(), past)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.MarkPaid(context.Background(), booking.ID, StatusActive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	released, err := svc.ReleaseExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected 1 released, got %d", released)
	}

	got, err := svc.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}

	again, err := svc.ReleaseExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Fatalf("second sweep must release nothing, got %d", again)
	}
}

func TestReleaseExpiredLeavesCurrentBookings(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	current := validRequest(uuid.New(), uuid.New())
	current.StartDate = pricing.Normalize(time.Now())
	current.EndDate = pricing.Normalize(time.Now().AddDate(0, 0, 5))

	booking, err := svc.Reserve(context.Background(), current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.MarkPaid(context.Background(), booking.ID, StatusActive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	released, err := svc.ReleaseExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != 0 {
		t.Fatalf("current booking must not be released, got %d", released)
	}
}
