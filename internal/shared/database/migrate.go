package database

import (
	"studyhall/internal/bookings"
	"studyhall/internal/payments"
	"studyhall/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Extensions must exist before AutoMigrate: primary keys default to
	// uuid_generate_v4() and the overlap constraint needs gist on uuid.
	for _, ext := range []string{`"uuid-ossp"`, "btree_gist"} {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS " + ext + ";").Error; err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		&venues.Venue{},
		&venues.Resource{},
		&bookings.Booking{},
		&payments.Transaction{},
	)
}
