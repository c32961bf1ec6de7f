package availability

import (
	"errors"
	"net/http"
	"time"

	"studyhall/internal/pricing"
	"studyhall/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// DateAvailabilityRequest lists the dates to evaluate for a venue
type DateAvailabilityRequest struct {
	VenueID string   `json:"venue_id" binding:"required,uuid"`
	Dates   []string `json:"dates" binding:"required"`
}

// CheckResource handles GET /api/v1/resources/:id/availability?start&end
func (c *Controller) CheckResource(ctx *gin.Context) {
	resourceID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid resource ID", nil)
		return
	}

	start, end, ok := parseRange(ctx)
	if !ok {
		return
	}

	result, err := c.service.IsRangeFree(ctx.Request.Context(), resourceID, start, end)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidRange) {
			response.BadRequest(ctx, err.Error(), nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Availability check failed", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Availability checked", result)
}

// VenueMap handles GET /api/v1/venues/:id/availability?start&end
func (c *Controller) VenueMap(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid venue ID", nil)
		return
	}

	start, end, ok := parseRange(ctx)
	if !ok {
		return
	}

	result, err := c.service.GetAvailabilityMap(ctx.Request.Context(), venueID, start, end)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidRange) {
			response.BadRequest(ctx, err.Error(), nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Availability check failed", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Availability map computed", result)
}

// DateAvailability handles POST /api/v1/availability/dates
func (c *Controller) DateAvailability(ctx *gin.Context) {
	var req DateAvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		response.BadRequest(ctx, "Invalid venue ID", nil)
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(ctx, "Invalid date, expected YYYY-MM-DD", raw)
			return
		}
		dates = append(dates, d)
	}

	result, err := c.service.GetDateAvailability(ctx.Request.Context(), venueID, dates)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Availability check failed", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Date availability computed", result)
}

func parseRange(ctx *gin.Context) (start, end time.Time, ok bool) {
	var err error
	start, err = time.Parse("2006-01-02", ctx.Query("start"))
	if err != nil {
		response.BadRequest(ctx, "Invalid or missing start date, expected YYYY-MM-DD", nil)
		return start, end, false
	}
	end, err = time.Parse("2006-01-02", ctx.Query("end"))
	if err != nil {
		response.BadRequest(ctx, "Invalid or missing end date, expected YYYY-MM-DD", nil)
		return start, end, false
	}
	return start, end, true
}

// SetupAvailabilityRoutes configures availability routes
func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/resources/:id/availability", controller.CheckResource) // GET /api/v1/resources/:id/availability
	rg.GET("/venues/:id/availability", controller.VenueMap)         // GET /api/v1/venues/:id/availability
	rg.POST("/availability/dates", controller.DateAvailability)     // POST /api/v1/availability/dates
}
