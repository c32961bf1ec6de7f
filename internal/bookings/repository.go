package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Core booking operations
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status Status) error
	MarkPaid(ctx context.Context, id uuid.UUID, status Status) error

	// Overlap queries (authoritative availability source)
	FindOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time) ([]Booking, error)
	FindHoldingByVenue(ctx context.Context, venueID uuid.UUID, start, end time.Time) ([]Booking, error)

	// Concurrency-safe reservation creation
	CreateReservationWithOverlapCheck(ctx context.Context, booking *Booking) error

	// Admin operations
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)

	// Expiry sweep
	ReleaseExpired(ctx context.Context, today time.Time) (int, error)
	ActivateStarted(ctx context.Context, today time.Time) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"payment_status": PaymentStatusPaid,
			"updated_at":     time.Now(),
		}).Error
}

// FindOverlapping returns every reservation holding the resource whose range
// overlaps [start, end]. Two inclusive ranges overlap iff s1 <= e2 && e1 >= s2.
func (r *repository) FindOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time) ([]Booking, error) {
	var conflicts []Booking
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Where("status IN ?", HoldingStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date ASC").
		Find(&conflicts).Error
	if err != nil {
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	return conflicts, nil
}

func (r *repository) FindHoldingByVenue(ctx context.Context, venueID uuid.UUID, start, end time.Time) ([]Booking, error) {
	var holding []Booking
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Where("status IN ?", HoldingStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Find(&holding).Error
	if err != nil {
		return nil, fmt.Errorf("venue overlap query failed: %w", err)
	}
	return holding, nil
}

// CreateReservationWithOverlapCheck creates a reservation atomically. The
// resource row is locked for the duration of the transaction, which
// serializes concurrent attempts for the same resource; the overlap check
// runs inside the lock, so two overlapping attempts can never both pass it.
func (r *repository) CreateReservationWithOverlapCheck(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the resource row
		var resource struct {
			ID      uuid.UUID `gorm:"column:id"`
			VenueID uuid.UUID `gorm:"column:venue_id"`
		}

		err := tx.Table("resources").
			Select("id, venue_id").
			Where("id = ?", booking.ResourceID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&resource).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}
			return fmt.Errorf("failed to lock resource: %w", err)
		}

		if resource.VenueID != booking.VenueID {
			return ErrResourceNotFound
		}

		// 2. Re-check overlaps inside the lock. The denormalized
		// is_available flag is never consulted here.
		var conflicts []Booking
		err = tx.
			Where("resource_id = ?", booking.ResourceID).
			Where("status IN ?", HoldingStatuses).
			Where("start_date <= ? AND end_date >= ?", booking.EndDate, booking.StartDate).
			Find(&conflicts).Error
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}

		if len(conflicts) > 0 {
			return &ConflictError{ResourceID: booking.ResourceID, Conflicts: conflicts}
		}

		// 3. Create the reservation
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		// 4. Flip the denormalized availability flag (UI hint only)
		err = tx.Table("resources").
			Where("id = ?", booking.ResourceID).
			Updates(map[string]interface{}{
				"is_available": false,
				"updated_at":   time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update resource availability: %w", err)
		}

		return nil
	})
}

func (r *repository) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var list []Booking
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Booking{})
	baseQuery = r.applyFilters(baseQuery, query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&list).Error

	return list, totalCount, err
}

// ReleaseExpired transitions lapsed holding bookings to COMPLETED and flips
// their resources back to available. Safe to run concurrently with itself:
// the UPDATE's status predicate makes a second pass a no-op.
func (r *repository) ReleaseExpired(ctx context.Context, today time.Time) (int, error) {
	released := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expired []Booking
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status IN ?", []Status{StatusActive, StatusConfirmed}).
			Where("end_date < ?", today).
			Find(&expired).Error
		if err != nil {
			return fmt.Errorf("expired booking query failed: %w", err)
		}

		for _, booking := range expired {
			res := tx.Model(&Booking{}).
				Where("id = ?", booking.ID).
				Where("status IN ?", []Status{StatusActive, StatusConfirmed}).
				Updates(map[string]interface{}{
					"status":     StatusCompleted,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return fmt.Errorf("failed to complete booking %s: %w", booking.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			released++

			// The flag is only a hint; overlap checks re-derive truth from
			// booking rows, so flipping it here cannot resurrect a resource
			// that has since been re-booked.
			err = tx.Table("resources").
				Where("id = ?", booking.ResourceID).
				Updates(map[string]interface{}{
					"is_available": true,
					"updated_at":   time.Now(),
				}).Error
			if err != nil {
				return fmt.Errorf("failed to release resource %s: %w", booking.ResourceID, err)
			}
		}

		return nil
	})

	return released, err
}

// ActivateStarted denormalizes CONFIRMED bookings whose start date has
// arrived into ACTIVE. Both statuses hold the resource, so this is cosmetic
// for dashboards and has no effect on overlap checks.
func (r *repository) ActivateStarted(ctx context.Context, today time.Time) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status = ?", StatusConfirmed).
		Where("start_date <= ? AND end_date >= ?", today, today).
		Updates(map[string]interface{}{
			"status":     StatusActive,
			"updated_at": time.Now(),
		})
	return int(res.RowsAffected), res.Error
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters BookingListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.VenueID != "" {
		if venueID, err := uuid.Parse(filters.VenueID); err == nil {
			query = query.Where("venue_id = ?", venueID)
		}
	}

	if filters.ResourceID != "" {
		if resourceID, err := uuid.Parse(filters.ResourceID); err == nil {
			query = query.Where("resource_id = ?", resourceID)
		}
	}

	if filters.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", filters.DateFrom); err == nil {
			query = query.Where("created_at >= ?", dateFrom)
		}
	}

	if filters.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", filters.DateTo); err == nil {
			// Include the entire day
			dateTo = dateTo.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			query = query.Where("created_at <= ?", dateTo)
		}
	}

	return query
}

// CalculateTotalPages is a pagination helper for list responses
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
