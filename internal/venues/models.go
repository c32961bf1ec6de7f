package venues

import (
	"time"

	"github.com/google/uuid"
)

// Venue is a study hall or private hall that owns bookable resources
type Venue struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Type        string    `gorm:"type:varchar(20);check:type IN ('study_hall', 'private_hall');default:'study_hall'" json:"type"`
	Address     string    `json:"address,omitempty"`
	DailyRate   float64   `gorm:"not null" json:"daily_rate"`
	WeeklyRate  float64   `gorm:"not null" json:"weekly_rate"`
	MonthlyRate float64   `gorm:"not null" json:"monthly_rate"`
	Status      string    `gorm:"type:varchar(20);check:status IN ('active', 'inactive');default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Resources []Resource `json:"resources,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
}

// Resource is a bookable seat or cabin belonging to a venue.
// IsAvailable is a denormalized hint for listing screens only; conflict
// detection always re-derives truth from booking rows.
type Resource struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VenueID     uuid.UUID `gorm:"type:uuid;index;not null" json:"venue_id"`
	Label       string    `gorm:"not null" json:"label"`
	Kind        string    `gorm:"type:varchar(10);check:kind IN ('seat', 'cabin');default:'seat'" json:"kind"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Venue *Venue `json:"venue,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Venue
func (Venue) TableName() string {
	return "venues"
}

// TableName sets the table name for Resource
func (Resource) TableName() string {
	return "resources"
}

func (v *Venue) IsActive() bool {
	return v.Status == "active"
}
