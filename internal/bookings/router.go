package bookings

import (
	"studyhall/internal/shared/config"
	"studyhall/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures booking routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("/:id", controller.GetBooking) // GET /api/v1/bookings/:id
	}

	admin := rg.Group("/admin/bookings")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("", controller.ListBookings)                    // GET /api/v1/admin/bookings
		admin.POST("/release-expired", controller.ReleaseExpired) // POST /api/v1/admin/bookings/release-expired
	}
}
