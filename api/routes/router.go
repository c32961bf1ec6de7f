// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"studyhall/internal/availability"
	"studyhall/internal/bookings"
	"studyhall/internal/notifications"
	"studyhall/internal/payments"
	"studyhall/internal/payments/gateway"
	"studyhall/internal/pricing"
	"studyhall/internal/shared/config"
	"studyhall/internal/shared/database"
	"studyhall/internal/venues"
	"studyhall/pkg/cache"
	"studyhall/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.EventProducer

	// Shared across feature setups
	cacheService   cache.Service
	venueRepo      venues.Repository
	bookingRepo    bookings.Repository
	bookingService bookings.Service

	// Exposed so main can hang background jobs off the same instances
	BookingService bookings.Service
	Reconciler     *payments.Reconciler
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.EventProducer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Shared dependencies, built once
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		r.cacheService = cache.NewService(redisClient)
	}
	r.venueRepo = venues.NewRepository(r.db.GetPostgreSQL())
	r.bookingRepo = bookings.NewRepository(r.db.GetPostgreSQL())
	r.bookingService = bookings.NewService(r.bookingRepo, r.cacheService, logger.GetDefault())
	r.BookingService = r.bookingService

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupVenueRoutes(api)
		r.setupPricingRoutes(api)
		r.setupAvailabilityRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "studyhall-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "studyhall-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupVenueRoutes configures venue and resource management routes
func (r *Router) setupVenueRoutes(rg *gin.RouterGroup) {
	venueService := venues.NewService(r.venueRepo)
	venueController := venues.NewController(venueService)

	venues.SetupVenueRoutes(rg, venueController, r.config)
}

// setupPricingRoutes configures quote routes
func (r *Router) setupPricingRoutes(rg *gin.RouterGroup) {
	pricingController := pricing.NewController(r.venueRepo)

	pricing.SetupPricingRoutes(rg, pricingController)
}

// setupAvailabilityRoutes configures availability check routes
func (r *Router) setupAvailabilityRoutes(rg *gin.RouterGroup) {
	availabilityService := availability.NewService(r.bookingRepo, r.venueRepo, r.cacheService, r.config.Redis.AvailabilityTTL)
	availabilityController := availability.NewController(availabilityService)

	availability.SetupAvailabilityRoutes(rg, availabilityController)
}

// setupBookingRoutes configures reservation routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingController := bookings.NewController(r.bookingService)

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}

// setupPaymentRoutes configures checkout, webhook and recovery routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())

	gateways := map[payments.Method]gateway.Gateway{
		payments.MethodRazorpay: gateway.NewRazorpayClient(
			r.config.Payments.RazorpayKeyID,
			r.config.Payments.RazorpayKeySecret,
			r.config.Payments.RazorpayBaseURL,
			r.config.Payments.GatewayTimeout,
		),
		payments.MethodEKQR: gateway.NewEKQRClient(
			r.config.Payments.EKQRAPIKey,
			r.config.Payments.EKQRBaseURL,
			r.config.Payments.GatewayTimeout,
		),
	}

	paymentService := payments.NewService(
		paymentRepo,
		r.bookingService,
		r.venueRepo,
		gateways,
		r.config.Payments.GatewayTimeout,
		logger.GetDefault(),
	)

	r.Reconciler = payments.NewReconciler(
		paymentRepo,
		r.bookingService,
		gateways,
		r.producer,
		r.config.Payments.RecoveryStaleAfter,
		r.config.Payments.GatewayTimeout,
		logger.GetDefault(),
	)

	paymentController := payments.NewController(paymentService, r.Reconciler, r.config.Payments.WebhookSecret, logger.GetDefault())

	payments.SetupPaymentRoutes(rg, paymentController, r.config)
}
