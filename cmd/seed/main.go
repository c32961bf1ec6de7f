package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"studyhall/internal/bookings"
	"studyhall/internal/pricing"
	"studyhall/internal/shared/config"
	"studyhall/internal/shared/database"
	"studyhall/internal/venues"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting StudyHall database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"transactions",
		"bookings",
		"resources",
		"venues",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		if err := tx.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll populates a couple of venues with seats and a few bookings so the
// availability and pricing endpoints have something to answer with
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	venueRepo := venues.NewRepository(s.db.GetPostgreSQL())
	venueService := venues.NewService(venueRepo)
	bookingRepo := bookings.NewRepository(s.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, nil, nil)

	hall, err := venueService.CreateVenue(ctx, venues.CreateVenueRequest{
		Name:        "Central Study Hall",
		Type:        "study_hall",
		Address:     "12 MG Road, Pune",
		DailyRate:   100,
		WeeklyRate:  600,
		MonthlyRate: 2000,
		SeatCount:   40,
	})
	if err != nil {
		return fmt.Errorf("failed to seed study hall: %w", err)
	}
	fmt.Printf("  venue %s (40 seats)\n", hall.Name)

	cabins, err := venueService.CreateVenue(ctx, venues.CreateVenueRequest{
		Name:        "Riverside Private Cabins",
		Type:        "private_hall",
		Address:     "3 River View, Pune",
		DailyRate:   250,
		WeeklyRate:  1500,
		MonthlyRate: 5000,
		SeatCount:   6,
	})
	if err != nil {
		return fmt.Errorf("failed to seed private hall: %w", err)
	}
	fmt.Printf("  venue %s (6 cabins)\n", cabins.Name)

	// A few bookings across the next two weeks on the first seats
	resources, err := venueRepo.ListResourcesByVenue(ctx, hall.ID)
	if err != nil {
		return fmt.Errorf("failed to list seeded resources: %w", err)
	}
	if len(resources) < 3 {
		return fmt.Errorf("expected seeded resources, got %d", len(resources))
	}

	today := pricing.Normalize(time.Now())
	userID := uuid.New()

	seedBookings := []bookings.ReserveRequest{
		{
			ResourceID: resources[0].ID,
			VenueID:    hall.ID,
			StartDate:  today,
			EndDate:    today.AddDate(0, 0, 6),
			Holder:     bookings.Holder{UserID: &userID},
			Amount:     600,
			Period:     pricing.PeriodWeekly,
		},
		{
			ResourceID: resources[1].ID,
			VenueID:    hall.ID,
			StartDate:  today.AddDate(0, 0, 2),
			EndDate:    today.AddDate(0, 0, 4),
			Holder:     bookings.Holder{GuestName: "Asha Kulkarni", GuestPhone: "9812345670"},
			Amount:     300,
			Period:     pricing.PeriodDaily,
		},
		{
			ResourceID: resources[2].ID,
			VenueID:    hall.ID,
			StartDate:  today,
			EndDate:    today.AddDate(0, 0, 29),
			Holder:     bookings.Holder{GuestName: "Rohan Mehta", GuestEmail: "rohan@example.com"},
			Amount:     2000,
			Period:     pricing.PeriodMonthly,
		},
	}

	for _, req := range seedBookings {
		booking, err := bookingService.Reserve(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to seed booking: %w", err)
		}
		fmt.Printf("  booking %s on %s\n", booking.BookingRef, booking.ResourceID)
	}

	return nil
}
