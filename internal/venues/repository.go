package venues

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrResourceNotFound = errors.New("resource not found")
)

type Repository interface {
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)
	UpdateVenue(ctx context.Context, venue *Venue) error

	CreateResource(ctx context.Context, resource *Resource) error
	GetResourceByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	ListResourcesByVenue(ctx context.Context, venueID uuid.UUID) ([]Resource, error)
	SetResourceAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateVenue(ctx context.Context, venue *Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *repository) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&venue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &venue, nil
}

func (r *repository) ListVenues(ctx context.Context) ([]Venue, error) {
	var list []Venue
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) UpdateVenue(ctx context.Context, venue *Venue) error {
	venue.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(venue).Error
}

func (r *repository) CreateResource(ctx context.Context, resource *Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *repository) GetResourceByID(ctx context.Context, id uuid.UUID) (*Resource, error) {
	var resource Resource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &resource, nil
}

func (r *repository) ListResourcesByVenue(ctx context.Context, venueID uuid.UUID) ([]Resource, error) {
	var list []Resource
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("label ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) SetResourceAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).
		Model(&Resource{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_available": available,
			"updated_at":   time.Now(),
		}).Error
}
