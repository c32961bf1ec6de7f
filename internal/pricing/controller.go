package pricing

import (
	"context"
	"net/http"
	"time"

	"studyhall/internal/shared/utils/response"
	"studyhall/internal/venues"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteRequest prices a date range either against a venue's stored rates or
// against rates supplied inline.
type QuoteRequest struct {
	VenueID string `json:"venue_id" binding:"omitempty,uuid"`
	Start   string `json:"start_date" binding:"required,dateformat"`
	End     string `json:"end_date" binding:"required,dateformat"`
	Rates   *Rates `json:"rates"`
}

type Controller struct {
	venueRepo venues.Repository
}

func NewController(venueRepo venues.Repository) *Controller {
	return &Controller{venueRepo: venueRepo}
}

// Quote handles POST /api/v1/pricing/quote
func (c *Controller) Quote(ctx *gin.Context) {
	var req QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		response.BadRequest(ctx, "Invalid start_date, expected YYYY-MM-DD", nil)
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		response.BadRequest(ctx, "Invalid end_date, expected YYYY-MM-DD", nil)
		return
	}

	rates, err := c.resolveRates(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, http.StatusNotFound, "Venue not found", nil)
		return
	}

	quote, err := Compute(start, end, rates)
	if err != nil {
		response.BadRequest(ctx, err.Error(), nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Quote computed successfully", quote)
}

func (c *Controller) resolveRates(ctx context.Context, req QuoteRequest) (Rates, error) {
	if req.VenueID == "" {
		if req.Rates != nil {
			return *req.Rates, nil
		}
		return Rates{}, nil
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		return Rates{}, err
	}

	venue, err := c.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return Rates{}, err
	}

	return Rates{
		Daily:   venue.DailyRate,
		Weekly:  venue.WeeklyRate,
		Monthly: venue.MonthlyRate,
	}, nil
}

// SetupPricingRoutes configures pricing routes
func SetupPricingRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/pricing/quote", controller.Quote) // POST /api/v1/pricing/quote
}
