package venues

// CreateVenueRequest represents venue creation input
type CreateVenueRequest struct {
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=study_hall private_hall"`
	Address     string  `json:"address"`
	DailyRate   float64 `json:"daily_rate" binding:"required,gt=0"`
	WeeklyRate  float64 `json:"weekly_rate" binding:"required,gt=0"`
	MonthlyRate float64 `json:"monthly_rate" binding:"required,gt=0"`
	SeatCount   int     `json:"seat_count" binding:"gte=0,lte=500"`
}

// CreateResourceRequest represents resource creation input
type CreateResourceRequest struct {
	Label string `json:"label" binding:"required"`
	Kind  string `json:"kind" binding:"required,oneof=seat cabin"`
}
