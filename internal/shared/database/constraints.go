package database

import (
	"strings"

	"gorm.io/gorm"
)

// MigrateConstraints adds database-level guards for concurrency control.
// Reservation atomicity is enforced by the row lock in the bookings
// repository; the exclusion constraint below is a second line of defense so
// no code path can insert overlapping holds for the same resource.
func MigrateConstraints(db *gorm.DB) error {
	// Range-overlap exclusion for reservations that hold a resource.
	// daterange is inclusive-inclusive to match the booking date semantics.
	err := db.Exec(`
		ALTER TABLE bookings
		ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (
			resource_id WITH =,
			daterange(start_date::date, end_date::date, '[]') WITH &&
		)
		WHERE (status IN ('PENDING', 'CONFIRMED', 'ACTIVE'));
	`).Error
	if err != nil && !isDuplicateConstraint(err) {
		return err
	}

	// Index for overlap scans by resource and status
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_resource_status_dates
		ON bookings (resource_id, status, start_date, end_date);
	`).Error
	if err != nil {
		return err
	}

	// Index for recovery sweeps over stale pending transactions
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_status_created
		ON transactions (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}

func isDuplicateConstraint(err error) bool {
	// ALTER TABLE ... ADD CONSTRAINT has no IF NOT EXISTS form
	return err != nil && (strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "42710"))
}
