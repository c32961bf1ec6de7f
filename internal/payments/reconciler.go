package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyhall/internal/bookings"
	"studyhall/internal/notifications"
	"studyhall/internal/payments/gateway"
	"studyhall/pkg/logger"

	"github.com/google/uuid"
)

// Outcome is the gateway's verdict being applied to a transaction
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// Finalize source labels, used only for logging and audit
const (
	SourceWebhook  = "webhook"
	SourceRecovery = "recovery"
	SourceManual   = "manual"
)

// FinalizeResult reports what Finalize did
type FinalizeResult struct {
	Transaction  *Transaction      `json:"transaction"`
	Booking      *bookings.Booking `json:"booking,omitempty"`
	AlreadyFinal bool              `json:"already_final"`
}

// SweepSummary reports one recovery sweep run. Recovered counts payments
// confirmed paid, Failed counts gateway-reported failures applied, Errors
// counts checks that could not complete and stay pending.
type SweepSummary struct {
	Checked   int `json:"checked"`
	Recovered int `json:"recovered"`
	Failed    int `json:"failed"`
	Errors    int `json:"errors"`
}

// Reconciler drives every transaction to a terminal state. Webhooks, the
// recovery sweep and manual recovery all funnel into Finalize, which is safe
// to call any number of times for the same transaction.
type Reconciler struct {
	repo           Repository
	bookingService bookings.Service
	gateways       map[Method]gateway.Gateway
	producer       notifications.EventProducer
	staleAfter     time.Duration
	gatewayTimeout time.Duration
	logger         *logger.Logger
}

func NewReconciler(
	repo Repository,
	bookingService bookings.Service,
	gateways map[Method]gateway.Gateway,
	producer notifications.EventProducer,
	staleAfter, gatewayTimeout time.Duration,
	log *logger.Logger,
) *Reconciler {
	if log == nil {
		log = logger.GetDefault()
	}
	if producer == nil {
		producer = notifications.NewNoopProducer()
	}
	return &Reconciler{
		repo:           repo,
		bookingService: bookingService,
		gateways:       gateways,
		producer:       producer,
		staleAfter:     staleAfter,
		gatewayTimeout: gatewayTimeout,
		logger:         log,
	}
}

// Finalize applies a gateway verdict to a transaction. Success materializes
// the reservation from the stored intent when none exists yet, links it and
// marks it paid. A transaction that is already terminal is left untouched.
func (r *Reconciler) Finalize(ctx context.Context, txnID uuid.UUID, outcome Outcome, reason, source string) (*FinalizeResult, error) {
	txn, err := r.repo.GetByID(ctx, txnID)
	if err != nil {
		return nil, err
	}

	if outcome == OutcomeFailure {
		return r.finalizeFailure(ctx, txn, reason, source)
	}
	return r.finalizeSuccess(ctx, txn, source)
}

func (r *Reconciler) finalizeFailure(ctx context.Context, txn *Transaction, reason, source string) (*FinalizeResult, error) {
	if txn.Status.IsTerminal() {
		return &FinalizeResult{Transaction: txn, AlreadyFinal: true}, nil
	}

	changed, err := r.repo.MarkFailed(ctx, txn.ID, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Another finalizer got there first
		current, err := r.repo.GetByID(ctx, txn.ID)
		if err != nil {
			return nil, err
		}
		return &FinalizeResult{Transaction: current, AlreadyFinal: true}, nil
	}

	txn.Status = StatusFailed
	txn.FailureReason = reason
	r.logger.LogPaymentFinalized(ctx, txn.ID.String(), string(StatusFailed), source)

	event := notifications.NewBookingEvent(notifications.EventPaymentFailed, txn.ID)
	event.Amount = txn.Amount
	event.Method = string(txn.Method)
	event.BookingID = txn.BookingID
	r.publish(ctx, event)

	return &FinalizeResult{Transaction: txn}, nil
}

func (r *Reconciler) finalizeSuccess(ctx context.Context, txn *Transaction, source string) (*FinalizeResult, error) {
	if txn.Status == StatusFailed {
		// A conflicting verdict after failure needs a human, not an override
		r.logger.Warn("success verdict for failed transaction ignored",
			"transaction_id", txn.ID.String(), "source", source)
		return &FinalizeResult{Transaction: txn, AlreadyFinal: true}, nil
	}

	claimed, err := r.repo.ClaimCompleted(ctx, txn.ID)
	if err != nil {
		return nil, err
	}

	if !claimed {
		current, err := r.repo.GetByID(ctx, txn.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == StatusFailed {
			return &FinalizeResult{Transaction: current, AlreadyFinal: true}, nil
		}
		if current.BookingID != nil {
			// Completed and linked: re-confirming the booking is a no-op
			booking, err := r.bookingService.ConfirmPayment(ctx, *current.BookingID)
			if err != nil {
				return nil, err
			}
			return &FinalizeResult{Transaction: current, Booking: booking, AlreadyFinal: true}, nil
		}
		// Completed but never linked: a previous finalizer crashed between
		// claiming and materializing. Repair by continuing below.
		txn = current
	} else {
		txn.Status = StatusCompleted
	}

	booking, err := r.ensureBooking(ctx, txn)
	if err != nil {
		inconsistency := &InconsistencyError{TransactionID: txn.ID, Cause: err}
		r.logger.LogInconsistency(ctx, txn.ID.String(), string(txn.Intent), err)
		return nil, inconsistency
	}

	r.logger.LogPaymentFinalized(ctx, txn.ID.String(), string(StatusCompleted), source)

	event := notifications.NewBookingEvent(notifications.EventBookingConfirmed, txn.ID)
	event.BookingID = &booking.ID
	event.VenueID = &booking.VenueID
	event.UserID = booking.UserID
	event.BookingRef = booking.BookingRef
	event.Amount = txn.Amount
	event.Method = string(txn.Method)
	r.publish(ctx, event)

	return &FinalizeResult{Transaction: txn, Booking: booking, AlreadyFinal: false}, nil
}

// ensureBooking returns the paid reservation for a completed transaction,
// creating it from the stored intent when the transaction has none
func (r *Reconciler) ensureBooking(ctx context.Context, txn *Transaction) (*bookings.Booking, error) {
	if txn.BookingID != nil {
		return r.bookingService.ConfirmPayment(ctx, *txn.BookingID)
	}

	intent, err := txn.DecodeIntent()
	if err != nil {
		return nil, err
	}
	start, end, err := intent.Dates()
	if err != nil {
		return nil, err
	}

	booking, err := r.bookingService.Reserve(ctx, bookings.ReserveRequest{
		ResourceID: intent.ResourceID,
		VenueID:    intent.VenueID,
		StartDate:  start,
		EndDate:    end,
		Holder: bookings.Holder{
			UserID:     intent.UserID,
			GuestName:  intent.GuestName,
			GuestPhone: intent.GuestPhone,
			GuestEmail: intent.GuestEmail,
		},
		Amount: intent.Amount,
		Period: intent.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to materialize reservation: %w", err)
	}

	if err := r.repo.LinkBooking(ctx, txn.ID, booking.ID); err != nil {
		return nil, err
	}
	bookingID := booking.ID
	txn.BookingID = &bookingID

	return r.bookingService.ConfirmPayment(ctx, booking.ID)
}

// RunRecoverySweep polls the gateway for every stale pending transaction and
// finalizes those with a verdict. Gateway errors leave the transaction
// pending for the next run.
func (r *Reconciler) RunRecoverySweep(ctx context.Context) (SweepSummary, error) {
	cutoff := time.Now().Add(-r.staleAfter)
	txns, err := r.repo.FindStalePending(ctx, cutoff)
	if err != nil {
		return SweepSummary{}, err
	}

	summary := SweepSummary{}
	for i := range txns {
		txn := &txns[i]
		summary.Checked++

		gw, ok := r.gateways[txn.Method]
		if !ok || txn.ExternalRef == "" {
			// Never reached the gateway; nothing to poll
			continue
		}

		status, err := r.checkGateway(ctx, gw, txn.ExternalRef, txn.CreatedAt)
		if err != nil {
			if !errors.Is(err, gateway.ErrOrderNotFound) {
				summary.Errors++
				r.logger.ErrorWithContext(ctx, "recovery status check failed", err, map[string]interface{}{
					"transaction_id": txn.ID.String(),
					"method":         string(txn.Method),
				})
			}
			continue
		}

		switch status {
		case gateway.OrderPaid:
			if _, err := r.Finalize(ctx, txn.ID, OutcomeSuccess, "", SourceRecovery); err != nil {
				summary.Errors++
				r.logger.ErrorWithContext(ctx, "recovery finalize failed", err, map[string]interface{}{
					"transaction_id": txn.ID.String(),
				})
				continue
			}
			summary.Recovered++
		case gateway.OrderFailed:
			if _, err := r.Finalize(ctx, txn.ID, OutcomeFailure, "gateway reported failure", SourceRecovery); err != nil {
				summary.Errors++
				continue
			}
			summary.Failed++
		}
	}

	r.logger.LogSweepSummary(ctx, "recovery", summary.Checked, summary.Recovered, summary.Failed, summary.Errors)
	return summary, nil
}

func (r *Reconciler) checkGateway(ctx context.Context, gw gateway.Gateway, ref string, createdAt time.Time) (gateway.OrderStatus, error) {
	checkCtx, cancel := context.WithTimeout(ctx, r.gatewayTimeout)
	defer cancel()
	return gw.CheckStatus(checkCtx, ref, createdAt)
}

// ManualRecover finalizes one pending transaction as paid without consulting
// the gateway. Operators use it after verifying payment out of band.
func (r *Reconciler) ManualRecover(ctx context.Context, txnID uuid.UUID) (*FinalizeResult, error) {
	txn, err := r.repo.GetByID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	// A completed transaction that never got its booking linked is still
	// recoverable; Finalize repairs it
	if txn.Status == StatusFailed || (txn.Status == StatusCompleted && txn.BookingID != nil) {
		return nil, ErrAlreadyFinalized
	}
	return r.Finalize(ctx, txnID, OutcomeSuccess, "", SourceManual)
}

// ManualRecoverAll finalizes everything in the pending list as paid,
// including completed transactions that never got a booking linked
func (r *Reconciler) ManualRecoverAll(ctx context.Context) (SweepSummary, error) {
	txns, _, err := r.repo.ListPending(ctx, PendingListQuery{Page: 1, Limit: 500})
	if err != nil {
		return SweepSummary{}, err
	}

	summary := SweepSummary{}
	for i := range txns {
		summary.Checked++
		if _, err := r.Finalize(ctx, txns[i].ID, OutcomeSuccess, "", SourceManual); err != nil {
			summary.Errors++
			r.logger.ErrorWithContext(ctx, "manual recovery failed", err, map[string]interface{}{
				"transaction_id": txns[i].ID.String(),
			})
			continue
		}
		summary.Recovered++
	}

	r.logger.LogSweepSummary(ctx, "manual", summary.Checked, summary.Recovered, summary.Failed, summary.Errors)
	return summary, nil
}

func (r *Reconciler) publish(ctx context.Context, event *notifications.BookingEvent) {
	if err := r.producer.Publish(ctx, event); err != nil {
		r.logger.ErrorWithContext(ctx, "failed to publish booking event", err, map[string]interface{}{
			"event_type":     string(event.Type),
			"transaction_id": event.TransactionID.String(),
		})
	}
}
