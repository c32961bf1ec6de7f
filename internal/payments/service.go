package payments

import (
	"context"
	"fmt"
	"time"

	"studyhall/internal/bookings"
	"studyhall/internal/payments/gateway"
	"studyhall/internal/pricing"
	"studyhall/internal/venues"
	"studyhall/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for checkout business logic
type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListPending(ctx context.Context, query PendingListQuery) ([]Transaction, int64, error)
}

// CheckoutResult is what the client needs to complete payment
type CheckoutResult struct {
	Transaction *Transaction      `json:"transaction"`
	Booking     *bookings.Booking `json:"booking,omitempty"`
	Quote       pricing.Quote     `json:"quote"`
	Order       *gateway.Order    `json:"order,omitempty"`
}

type service struct {
	repo           Repository
	bookingService bookings.Service
	venueRepo      venues.Repository
	gateways       map[Method]gateway.Gateway
	gatewayTimeout time.Duration
	logger         *logger.Logger
}

func NewService(
	repo Repository,
	bookingService bookings.Service,
	venueRepo venues.Repository,
	gateways map[Method]gateway.Gateway,
	gatewayTimeout time.Duration,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:           repo,
		bookingService: bookingService,
		venueRepo:      venueRepo,
		gateways:       gateways,
		gatewayTimeout: gatewayTimeout,
		logger:         log,
	}
}

// Checkout prices the requested range, optionally reserves the resource up
// front, and opens a pending transaction carrying the full reservation
// intent. With DeferBooking the resource stays open until payment confirms
// and the reconciler materializes the reservation from the intent.
func (s *service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	method := Method(req.Method)
	if !method.IsValid() {
		return nil, fmt.Errorf("unsupported payment method %q", req.Method)
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", req.EndDate, err)
	}
	start = pricing.Normalize(start)
	end = pricing.Normalize(end)

	resource, err := s.venueRepo.GetResourceByID(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	venue, err := s.venueRepo.GetVenueByID(ctx, resource.VenueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsActive() {
		return nil, fmt.Errorf("venue %s is not accepting bookings", venue.ID)
	}

	quote, err := pricing.Compute(start, end, pricing.Rates{
		Daily:   venue.DailyRate,
		Weekly:  venue.WeeklyRate,
		Monthly: venue.MonthlyRate,
	})
	if err != nil {
		return nil, err
	}

	holder := bookings.Holder{
		UserID:     req.UserID,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
	}

	intent := ReservationIntent{
		ResourceID: resource.ID,
		VenueID:    venue.ID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Amount:     quote.Amount,
		Period:     quote.Tier,
		UserID:     req.UserID,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
	}
	intentBlob, err := intent.Encode()
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		Amount: quote.Amount,
		Method: method,
		Status: StatusPending,
		Intent: intentBlob,
	}

	var booking *bookings.Booking
	if !req.DeferBooking {
		booking, err = s.bookingService.Reserve(ctx, bookings.ReserveRequest{
			ResourceID: resource.ID,
			VenueID:    venue.ID,
			StartDate:  start,
			EndDate:    end,
			Holder:     holder,
			Amount:     quote.Amount,
			Period:     quote.Tier,
		})
		if err != nil {
			return nil, err
		}
		bookingID := booking.ID
		txn.BookingID = &bookingID
	}

	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Transaction: txn,
		Booking:     booking,
		Quote:       quote,
	}

	if method.UsesGateway() {
		order, err := s.createOrder(ctx, method, quote.Amount, txn.ID.String())
		if err != nil {
			// The transaction stays pending without a ref; the client can
			// retry checkout and recovery skips unpolled rows
			s.logger.ErrorWithContext(ctx, "gateway order creation failed", err, map[string]interface{}{
				"transaction_id": txn.ID.String(),
				"method":         string(method),
			})
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		if err := s.repo.SetExternalRef(ctx, txn.ID, order.Ref); err != nil {
			return nil, err
		}
		txn.ExternalRef = order.Ref
		result.Order = order
	}

	return result, nil
}

func (s *service) createOrder(ctx context.Context, method Method, amount float64, receipt string) (*gateway.Order, error) {
	gw, ok := s.gateways[method]
	if !ok {
		return nil, fmt.Errorf("no gateway configured for method %q", method)
	}
	orderCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return gw.CreateOrder(orderCtx, amount, receipt)
}

func (s *service) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPending(ctx context.Context, query PendingListQuery) ([]Transaction, int64, error) {
	return s.repo.ListPending(ctx, query)
}
