package bookings

import (
	"errors"
	"net/http"

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

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid booking ID", nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.Error(ctx, http.StatusNotFound, "Booking not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to get booking", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

// ListBookings handles GET /api/v1/admin/bookings
func (c *Controller) ListBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.BadRequest(ctx, "Invalid query parameters", err.Error())
		return
	}

	list, totalCount, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}

	if query.Limit <= 0 {
		query.Limit = 10
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings":    list,
		"total_count": totalCount,
		"total_pages": CalculateTotalPages(totalCount, query.Limit),
	})
}

// ReleaseExpired handles POST /api/v1/admin/bookings/release-expired
func (c *Controller) ReleaseExpired(ctx *gin.Context) {
	released, err := c.service.ReleaseExpired(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Expiry sweep failed", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Expired bookings released", gin.H{
		"released_count": released,
	})
}
