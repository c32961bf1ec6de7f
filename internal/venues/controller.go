package venues

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

// CreateVenue handles POST /api/v1/admin/venues
func (c *Controller) CreateVenue(ctx *gin.Context) {
	var req CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	venue, err := c.service.CreateVenue(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to create venue", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Venue created successfully", venue)
}

// GetVenue handles GET /api/v1/venues/:id
func (c *Controller) GetVenue(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid venue ID", nil)
		return
	}

	venue, err := c.service.GetVenue(ctx.Request.Context(), venueID)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			response.Error(ctx, http.StatusNotFound, "Venue not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to get venue", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Venue retrieved successfully", venue)
}

// ListVenues handles GET /api/v1/venues
func (c *Controller) ListVenues(ctx *gin.Context) {
	venues, err := c.service.ListVenues(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list venues", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Venues retrieved successfully", gin.H{
		"venues": venues,
		"count":  len(venues),
	})
}

// AddResource handles POST /api/v1/admin/venues/:id/resources
func (c *Controller) AddResource(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid venue ID", nil)
		return
	}

	var req CreateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	resource, err := c.service.AddResource(ctx.Request.Context(), venueID, req)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			response.Error(ctx, http.StatusNotFound, "Venue not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to add resource", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Resource created successfully", resource)
}

// ListResources handles GET /api/v1/venues/:id/resources
func (c *Controller) ListResources(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid venue ID", nil)
		return
	}

	resources, err := c.service.ListResources(ctx.Request.Context(), venueID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list resources", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Resources retrieved successfully", gin.H{
		"resources": resources,
		"count":     len(resources),
	})
}
