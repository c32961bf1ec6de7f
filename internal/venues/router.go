package venues

import (
	"studyhall/internal/shared/config"
	"studyhall/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupVenueRoutes configures venue and resource routes
func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public browsing
	venues := rg.Group("/venues")
	{
		venues.GET("", controller.ListVenues)            // GET /api/v1/venues
		venues.GET("/:id", controller.GetVenue)          // GET /api/v1/venues/:id
		venues.GET("/:id/resources", controller.ListResources) // GET /api/v1/venues/:id/resources
	}

	// Admin management
	admin := rg.Group("/admin/venues")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateVenue)              // POST /api/v1/admin/venues
		admin.POST("/:id/resources", controller.AddResource) // POST /api/v1/admin/venues/:id/resources
	}
}
