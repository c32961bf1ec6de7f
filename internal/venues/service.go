package venues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service interface defines the contract for venue and resource management
type Service interface {
	CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)

	AddResource(ctx context.Context, venueID uuid.UUID, req CreateResourceRequest) (*Resource, error)
	GetResource(ctx context.Context, id uuid.UUID) (*Resource, error)
	ListResources(ctx context.Context, venueID uuid.UUID) ([]Resource, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	venue := &Venue{
		Name:        req.Name,
		Type:        req.Type,
		Address:     req.Address,
		DailyRate:   req.DailyRate,
		WeeklyRate:  req.WeeklyRate,
		MonthlyRate: req.MonthlyRate,
		Status:      "active",
	}

	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	// Seed the requested number of seats with the venue
	for i := 1; i <= req.SeatCount; i++ {
		resource := &Resource{
			VenueID:     venue.ID,
			Label:       fmt.Sprintf("S%03d", i),
			Kind:        "seat",
			IsAvailable: true,
		}
		if err := s.repo.CreateResource(ctx, resource); err != nil {
			return nil, fmt.Errorf("failed to seed seat %d: %w", i, err)
		}
	}

	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	return s.repo.GetVenueByID(ctx, id)
}

func (s *service) ListVenues(ctx context.Context) ([]Venue, error) {
	return s.repo.ListVenues(ctx)
}

func (s *service) AddResource(ctx context.Context, venueID uuid.UUID, req CreateResourceRequest) (*Resource, error) {
	if _, err := s.repo.GetVenueByID(ctx, venueID); err != nil {
		return nil, err
	}

	resource := &Resource{
		VenueID:     venueID,
		Label:       req.Label,
		Kind:        req.Kind,
		IsAvailable: true,
	}

	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return resource, nil
}

func (s *service) GetResource(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return s.repo.GetResourceByID(ctx, id)
}

func (s *service) ListResources(ctx context.Context, venueID uuid.UUID) ([]Resource, error) {
	return s.repo.ListResourcesByVenue(ctx, venueID)
}
