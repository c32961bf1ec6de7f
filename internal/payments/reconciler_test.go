package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"studyhall/internal/bookings"
	"studyhall/internal/notifications"
	"studyhall/internal/payments/gateway"
	"studyhall/internal/pricing"

	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// memoryTxnRepo implements Repository against a mutex-guarded map
type memoryTxnRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*Transaction
}

func newMemoryTxnRepo() *memoryTxnRepo {
	return &memoryTxnRepo{rows: make(map[uuid.UUID]*Transaction)}
}

func (m *memoryTxnRepo) CreateTransaction(ctx context.Context, txn *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now()
	copied := *txn
	m.rows[txn.ID] = &copied
	return nil
}

func (m *memoryTxnRepo) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.rows[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	copied := *txn
	return &copied, nil
}

func (m *memoryTxnRepo) GetByExternalRef(ctx context.Context, ref string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range m.rows {
		if txn.ExternalRef == ref {
			copied := *txn
			return &copied, nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (m *memoryTxnRepo) SetExternalRef(ctx context.Context, id uuid.UUID, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.rows[id]
	if !ok {
		return ErrTransactionNotFound
	}
	txn.ExternalRef = ref
	return nil
}

func (m *memoryTxnRepo) ClaimCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.rows[id]
	if !ok || txn.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	txn.Status = StatusCompleted
	txn.ProcessedAt = &now
	return true, nil
}

func (m *memoryTxnRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.rows[id]
	if !ok || txn.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	txn.Status = StatusFailed
	txn.FailureReason = reason
	txn.ProcessedAt = &now
	return true, nil
}

func (m *memoryTxnRepo) LinkBooking(ctx context.Context, id, bookingID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.rows[id]
	if !ok {
		return ErrTransactionNotFound
	}
	txn.BookingID = &bookingID
	return nil
}

func (m *memoryTxnRepo) FindStalePending(ctx context.Context, olderThan time.Time) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, txn := range m.rows {
		if txn.Status == StatusPending && txn.Method.UsesGateway() && txn.CreatedAt.Before(olderThan) {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (m *memoryTxnRepo) ListPending(ctx context.Context, query PendingListQuery) ([]Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, txn := range m.rows {
		if txn.Status == StatusPending || (txn.Status == StatusCompleted && txn.BookingID == nil) {
			out = append(out, *txn)
		}
	}
	return out, int64(len(out)), nil
}

// fakeBookingService implements bookings.Service with an overlap-checked
// in-memory store
type fakeBookingService struct {
	bookings.Service
	mu   sync.Mutex
	rows map[uuid.UUID]*bookings.Booking
}

func newFakeBookingService() *fakeBookingService {
	return &fakeBookingService{rows: make(map[uuid.UUID]*bookings.Booking)}
}

func (f *fakeBookingService) Reserve(ctx context.Context, req bookings.ReserveRequest) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.rows {
		if b.ResourceID == req.ResourceID && b.Status.HoldsResource() && b.Overlaps(req.StartDate, req.EndDate) {
			return nil, &bookings.ConflictError{ResourceID: req.ResourceID, Conflicts: []bookings.Booking{*b}}
		}
	}

	booking := &bookings.Booking{
		ID:            uuid.New(),
		ResourceID:    req.ResourceID,
		VenueID:       req.VenueID,
		UserID:        req.Holder.UserID,
		GuestName:     req.Holder.GuestName,
		GuestPhone:    req.Holder.GuestPhone,
		GuestEmail:    req.Holder.GuestEmail,
		StartDate:     pricing.Normalize(req.StartDate),
		EndDate:       pricing.Normalize(req.EndDate),
		Status:        bookings.StatusPending,
		PaymentStatus: bookings.PaymentStatusUnpaid,
		TotalAmount:   req.Amount,
		BookingPeriod: req.Period,
		BookingRef:    fmt.Sprintf("SHB-TEST-%06d", len(f.rows)+1),
	}
	f.rows[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingService) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[bookingID]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	if b.PaymentStatus != bookings.PaymentStatusPaid {
		b.PaymentStatus = bookings.PaymentStatusPaid
		b.Status = bookings.StatusConfirmed
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[bookingID]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// scriptedGateway answers CheckStatus from a fixed map
type scriptedGateway struct {
	statuses map[string]gateway.OrderStatus
	err      error
}

func (s *scriptedGateway) Name() string { return "scripted" }

func (s *scriptedGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (*gateway.Order, error) {
	return &gateway.Order{Ref: "order_" + receipt, Amount: amount, Currency: "INR"}, nil
}

func (s *scriptedGateway) CheckStatus(ctx context.Context, ref string, _ time.Time) (gateway.OrderStatus, error) {
	if s.err != nil {
		return gateway.OrderPending, s.err
	}
	status, ok := s.statuses[ref]
	if !ok {
		return gateway.OrderPending, gateway.ErrOrderNotFound
	}
	return status, nil
}

// dateKeyedGateway only finds an order when queried under its creation
// date, like a provider that keys status lookups by txn_date
type dateKeyedGateway struct {
	statuses map[string]gateway.OrderStatus
	dates    map[string]string
}

func (d *dateKeyedGateway) Name() string { return "date-keyed" }

func (d *dateKeyedGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (*gateway.Order, error) {
	return &gateway.Order{Ref: "order_" + receipt, Amount: amount, Currency: "INR"}, nil
}

func (d *dateKeyedGateway) CheckStatus(ctx context.Context, ref string, createdAt time.Time) (gateway.OrderStatus, error) {
	if d.dates[ref] != createdAt.Format("2006-01-02") {
		return gateway.OrderPending, gateway.ErrOrderNotFound
	}
	return d.statuses[ref], nil
}

// recordingProducer captures published events
type recordingProducer struct {
	mu     sync.Mutex
	events []*notifications.BookingEvent
}

func (r *recordingProducer) Publish(ctx context.Context, event *notifications.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingProducer) Close() error { return nil }

func (r *recordingProducer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTestReconciler(repo Repository, svc bookings.Service, gw gateway.Gateway, producer notifications.EventProducer) *Reconciler {
	gateways := map[Method]gateway.Gateway{}
	if gw != nil {
		gateways[MethodRazorpay] = gw
		gateways[MethodEKQR] = gw
	}
	return NewReconciler(repo, svc, gateways, producer, 10*time.Minute, 5*time.Second, nil)
}

func intentTransaction(t *testing.T, method Method) *Transaction {
	t.Helper()
	userID := uuid.New()
	intent := ReservationIntent{
		ResourceID: uuid.New(),
		VenueID:    uuid.New(),
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-07",
		Amount:     600,
		Period:     pricing.PeriodWeekly,
		UserID:     &userID,
	}
	blob, err := intent.Encode()
	if err != nil {
		t.Fatalf("failed to encode intent: %v", err)
	}
	return &Transaction{
		Amount: 600,
		Method: method,
		Status: StatusPending,
		Intent: blob,
	}
}

func TestFinalizeSuccessMaterializesFromIntent(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	rec := newTestReconciler(repo, svc, nil, nil)

	txn := intentTransaction(t, MethodRazorpay)
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := rec.Finalize(context.Background(), txn.ID, OutcomeSuccess, "", SourceWebhook)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyFinal {
		t.Fatalf("first finalize must not report already final")
	}
	if result.Booking == nil {
		t.Fatalf("expected a materialized booking")
	}
	if result.Booking.PaymentStatus != bookings.PaymentStatusPaid {
		t.Fatalf("expected booking marked PAID, got %s", result.Booking.PaymentStatus)
	}

	stored, err := repo.GetByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", stored.Status)
	}
	if stored.BookingID == nil || *stored.BookingID != result.Booking.ID {
		t.Fatalf("transaction not linked to the booking")
	}
}

func TestFinalizeDuplicateDeliveryIsNoOp(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	producer := &recordingProducer{}
	rec := newTestReconciler(repo, svc, nil, producer)

	txn := intentTransaction(t, MethodRazorpay)
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := rec.Finalize(context.Background(), txn.ID, OutcomeSuccess, "", SourceWebhook)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rec.Finalize(context.Background(), txn.ID, OutcomeSuccess, "", SourceWebhook)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.AlreadyFinal {
		t.Fatalf("duplicate delivery must report already final")
	}
	if svc.count() != 1 {
		t.Fatalf("duplicate delivery created %d bookings, want 1", svc.count())
	}
	if second.Booking.ID != first.Booking.ID {
		t.Fatalf("duplicate delivery must resolve to the same booking")
	}
	if producer.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", producer.count())
	}
}

func TestFinalizeFailureLeavesBookingUntouched(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	rec := newTestReconciler(repo, svc, nil, nil)

	userID := uuid.New()
	booking, err := svc.Reserve(context.Background(), bookings.ReserveRequest{
		ResourceID: uuid.New(),
		VenueID:    uuid.New(),
		StartDate:  date(2024, 6, 1),
		EndDate:    date(2024, 6, 7),
		Holder:     bookings.Holder{UserID: &userID},
		Amount:     600,
		Period:     pricing.PeriodWeekly,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txn := intentTransaction(t, MethodRazorpay)
	txn.BookingID = &booking.ID
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := rec.Finalize(context.Background(), txn.ID, OutcomeFailure, "card declined", SourceWebhook)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transaction.Status != StatusFailed {
		t.Fatalf("expected FAILED, got %s", result.Transaction.Status)
	}
	if result.Transaction.FailureReason != "card declined" {
		t.Fatalf("failure reason not recorded")
	}

	got, err := svc.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PaymentStatus != bookings.PaymentStatusUnpaid || got.Status != bookings.StatusPending {
		t.Fatalf("failed payment must not touch the booking, got %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestFinalizeSuccessAfterFailureIgnored(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	rec := newTestReconciler(repo, svc, nil, nil)

	txn := intentTransaction(t, MethodRazorpay)
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := rec.Finalize(context.Background(), txn.ID, OutcomeFailure, "timeout", SourceWebhook); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := rec.Finalize(context.Background(), txn.ID, OutcomeSuccess, "", SourceRecovery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyFinal {
		t.Fatalf("success after failure must be a no-op")
	}
	if svc.count() != 0 {
		t.Fatalf("no booking may be created for a failed transaction")
	}
}

func TestFinalizeMaterializationConflictSurfaces(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	rec := newTestReconciler(repo, svc, nil, nil)

	txn := intentTransaction(t, MethodRazorpay)
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Occupy the intent's resource for the intent's range
	intent, err := txn.DecodeIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	otherUser := uuid.New()
	if _, err := svc.Reserve(context.Background(), bookings.ReserveRequest{
		ResourceID: intent.ResourceID,
		VenueID:    intent.VenueID,
		StartDate:  date(2024, 6, 3),
		EndDate:    date(2024, 6, 5),
		Holder:     bookings.Holder{UserID: &otherUser},
		Amount:     300,
		Period:     pricing.PeriodDaily,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = rec.Finalize(context.Background(), txn.ID, OutcomeSuccess, "", SourceWebhook)
	var inconsistency *InconsistencyError
	if !errors.As(err, &inconsistency) {
		t.Fatalf("expected InconsistencyError, got %v", err)
	}
	if inconsistency.TransactionID != txn.ID {
		t.Fatalf("inconsistency reported wrong transaction")
	}
}

func TestRecoverySweepConvergence(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()

	paid := intentTransaction(t, MethodRazorpay)
	paid.ExternalRef = "order_paid"
	failed := intentTransaction(t, MethodEKQR)
	failed.ExternalRef = "order_failed"
	stillPending := intentTransaction(t, MethodRazorpay)
	stillPending.ExternalRef = "order_open"
	unpolled := intentTransaction(t, MethodRazorpay)

	for _, txn := range []*Transaction{paid, failed, stillPending, unpolled} {
		if err := repo.CreateTransaction(context.Background(), txn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Age past the stale cutoff
		repo.rows[txn.ID].CreatedAt = time.Now().Add(-time.Hour)
	}

	gw := &scriptedGateway{statuses: map[string]gateway.OrderStatus{
		"order_paid":   gateway.OrderPaid,
		"order_failed": gateway.OrderFailed,
		"order_open":   gateway.OrderPending,
	}}
	rec := newTestReconciler(repo, svc, gw, nil)

	summary, err := rec.RunRecoverySweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Checked != 4 {
		t.Fatalf("expected 4 checked, got %d", summary.Checked)
	}
	if summary.Recovered != 1 {
		t.Fatalf("expected 1 recovered, got %d", summary.Recovered)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected 1 gateway-reported failure, got %d", summary.Failed)
	}
	if summary.Errors != 0 {
		t.Fatalf("expected 0 errors, got %d", summary.Errors)
	}

	for txnID, want := range map[uuid.UUID]Status{
		paid.ID:         StatusCompleted,
		failed.ID:       StatusFailed,
		stillPending.ID: StatusPending,
		unpolled.ID:     StatusPending,
	} {
		got, err := repo.GetByID(context.Background(), txnID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != want {
			t.Fatalf("transaction %s: status %s, want %s", txnID, got.Status, want)
		}
	}

	if svc.count() != 1 {
		t.Fatalf("expected 1 booking from recovered transaction, got %d", svc.count())
	}
}

func TestRecoverySweepIdempotent(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()

	paid := intentTransaction(t, MethodRazorpay)
	paid.ExternalRef = "order_paid"
	if err := repo.CreateTransaction(context.Background(), paid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.rows[paid.ID].CreatedAt = time.Now().Add(-time.Hour)

	gw := &scriptedGateway{statuses: map[string]gateway.OrderStatus{
		"order_paid": gateway.OrderPaid,
	}}
	rec := newTestReconciler(repo, svc, gw, nil)

	if _, err := rec.RunRecoverySweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rec.RunRecoverySweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Checked != 0 {
		t.Fatalf("finalized transactions must leave the sweep set, got %d checked", second.Checked)
	}
	if svc.count() != 1 {
		t.Fatalf("expected 1 booking after repeated sweeps, got %d", svc.count())
	}
}

func TestRecoverySweepGatewayErrorLeavesPending(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()

	txn := intentTransaction(t, MethodRazorpay)
	txn.ExternalRef = "order_x"
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.rows[txn.ID].CreatedAt = time.Now().Add(-time.Hour)

	gw := &scriptedGateway{err: errors.New("gateway timeout")}
	rec := newTestReconciler(repo, svc, gw, nil)

	summary, err := rec.RunRecoverySweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Errors != 1 {
		t.Fatalf("expected 1 errored check, got %d", summary.Errors)
	}
	if summary.Recovered != 0 || summary.Failed != 0 {
		t.Fatalf("errored check must not count as recovered or failed, got %d/%d", summary.Recovered, summary.Failed)
	}

	got, err := repo.GetByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("gateway error must leave the transaction pending, got %s", got.Status)
	}
}

func TestRecoverySweepPollsUnderCreationDate(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()

	// Created yesterday, so a lookup under today's date would miss it
	txn := intentTransaction(t, MethodEKQR)
	txn.ExternalRef = "order_old"
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	createdAt := time.Now().Add(-26 * time.Hour)
	repo.rows[txn.ID].CreatedAt = createdAt

	gw := &dateKeyedGateway{
		statuses: map[string]gateway.OrderStatus{"order_old": gateway.OrderPaid},
		dates:    map[string]string{"order_old": createdAt.Format("2006-01-02")},
	}
	rec := newTestReconciler(repo, svc, gw, nil)

	summary, err := rec.RunRecoverySweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Recovered != 1 {
		t.Fatalf("expected the day-old transaction recovered, got %d", summary.Recovered)
	}

	got, err := repo.GetByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}
	if svc.count() != 1 {
		t.Fatalf("expected 1 materialized booking, got %d", svc.count())
	}
}

func TestPendingListSurfacesCompletedUnlinked(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	rec := newTestReconciler(repo, svc, nil, nil)

	txn := intentTransaction(t, MethodRazorpay)
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate a finalizer that crashed between claiming and materializing
	claimed, err := repo.ClaimCompleted(context.Background(), txn.ID)
	if err != nil || !claimed {
		t.Fatalf("claim failed: %v", err)
	}

	listed, total, err := repo.ListPending(context.Background(), PendingListQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(listed) != 1 || listed[0].ID != txn.ID {
		t.Fatalf("completed transaction without a booking must stay listed, got %d", total)
	}

	summary, err := rec.ManualRecoverAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Recovered != 1 {
		t.Fatalf("expected 1 recovered, got %d", summary.Recovered)
	}

	got, err := repo.GetByID(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BookingID == nil {
		t.Fatalf("recovery must link the materialized booking")
	}
	if svc.count() != 1 {
		t.Fatalf("expected 1 booking, got %d", svc.count())
	}

	if _, total, err = repo.ListPending(context.Background(), PendingListQuery{Page: 1, Limit: 10}); err != nil || total != 0 {
		t.Fatalf("repaired transaction must leave the list, got %d (%v)", total, err)
	}
}

func TestManualRecover(t *testing.T) {
	repo := newMemoryTxnRepo()
	svc := newFakeBookingService()
	rec := newTestReconciler(repo, svc, nil, nil)

	txn := intentTransaction(t, MethodOffline)
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := rec.ManualRecover(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transaction.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Transaction.Status)
	}
	if result.Booking == nil || result.Booking.PaymentStatus != bookings.PaymentStatusPaid {
		t.Fatalf("manual recovery must materialize and pay the booking")
	}

	if _, err := rec.ManualRecover(context.Background(), txn.ID); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized on repeat, got %v", err)
	}
}

func TestManualRecoverUnknownTransaction(t *testing.T) {
	rec := newTestReconciler(newMemoryTxnRepo(), newFakeBookingService(), nil, nil)

	if _, err := rec.ManualRecover(context.Background(), uuid.New()); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}
