package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"studyhall/internal/pricing"
	"studyhall/pkg/cache"
	"studyhall/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for reservation business logic
type Service interface {
	Reserve(ctx context.Context, req ReserveRequest) (*Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*Booking, error)

	// Expiry sweeper
	ReleaseExpired(ctx context.Context) (int, error)
}

// ReserveRequest carries everything needed to create a reservation. Amount
// and period come from a quote the caller already computed; they are
// persisted as-is so the charge stays reproducible.
type ReserveRequest struct {
	ResourceID uuid.UUID
	VenueID    uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Holder     Holder
	Amount     float64
	Period     pricing.Period
}

type service struct {
	repo   Repository
	cache  cache.Service
	logger *logger.Logger
}

// NewService creates a new booking service instance. cache may be nil when
// Redis is unavailable; invalidation is then skipped.
func NewService(repo Repository, cacheService cache.Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:   repo,
		cache:  cacheService,
		logger: log,
	}
}

// Reserve atomically creates a PENDING/unpaid reservation for the requested
// range, or returns a ConflictError listing the blocking reservations.
func (s *service) Reserve(ctx context.Context, req ReserveRequest) (*Booking, error) {
	start := pricing.Normalize(req.StartDate)
	end := pricing.Normalize(req.EndDate)
	if start.After(end) {
		return nil, fmt.Errorf("invalid range: %w", pricing.ErrInvalidRange)
	}

	if req.Holder.IsGuest() && req.Holder.GuestPhone == "" && req.Holder.GuestEmail == "" {
		return nil, fmt.Errorf("guest reservation requires a phone or email")
	}

	if !req.Period.IsValid() {
		return nil, fmt.Errorf("invalid booking period %q", req.Period)
	}

	bookingRef, err := generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		ResourceID:    req.ResourceID,
		VenueID:       req.VenueID,
		UserID:        req.Holder.UserID,
		GuestName:     req.Holder.GuestName,
		GuestPhone:    req.Holder.GuestPhone,
		GuestEmail:    req.Holder.GuestEmail,
		StartDate:     start,
		EndDate:       end,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		TotalAmount:   req.Amount,
		BookingPeriod: req.Period,
		BookingRef:    bookingRef,
	}

	if err := s.repo.CreateReservationWithOverlapCheck(ctx, booking); err != nil {
		if conflict, ok := err.(*ConflictError); ok {
			s.logger.LogReservationConflict(ctx, req.ResourceID.String(), len(conflict.Conflicts))
		}
		return nil, err
	}

	s.logger.LogReservationCreated(ctx, booking.ID.String(), booking.ResourceID.String(), booking.VenueID.String())
	s.invalidateAvailability(ctx, booking.VenueID)

	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, bookingID)
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetAllBookings(ctx, query)
}

// ConfirmPayment marks a reservation paid and promotes its status. Calling it
// on an already-paid booking is a no-op, so payment finalization can retry.
func (s *service) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == PaymentStatusPaid {
		return booking, nil
	}

	today := pricing.Normalize(time.Now())
	status := StatusConfirmed
	if !today.Before(booking.StartDate) && !today.After(booking.EndDate) {
		status = StatusActive
	}

	if err := s.repo.MarkPaid(ctx, bookingID, status); err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	booking.PaymentStatus = PaymentStatusPaid
	booking.Status = status
	return booking, nil
}

// ReleaseExpired completes lapsed bookings and reclaims their resources.
// Running it twice in a row releases nothing the second time.
func (s *service) ReleaseExpired(ctx context.Context) (int, error) {
	today := pricing.Normalize(time.Now())

	if _, err := s.repo.ActivateStarted(ctx, today); err != nil {
		s.logger.ErrorWithContext(ctx, "failed to activate started bookings", err, nil)
	}

	released, err := s.repo.ReleaseExpired(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("expiry sweep failed: %w", err)
	}

	if released > 0 {
		s.logger.LogSweepSummary(ctx, "expiry", released, released, 0, 0)
		// Released resources may change every venue's availability map
		if s.cache != nil {
			_ = s.cache.DeletePattern(ctx, "availability:venue:*")
		}
	}

	return released, nil
}

func (s *service) invalidateAvailability(ctx context.Context, venueID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, cache.VenueAvailabilityPattern(venueID.String()))
}

// generateBookingReference generates a unique booking reference
func generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("SHB-%s-%s", timestamp, string(randomPart)), nil
}
