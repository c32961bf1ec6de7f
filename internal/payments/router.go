package payments

import (
	"studyhall/internal/shared/config"
	"studyhall/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures checkout, webhook and recovery routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	rg.POST("/checkout", controller.Checkout) // POST /api/v1/checkout

	payments := rg.Group("/payments")
	{
		payments.GET("/:id", controller.GetTransaction)       // GET /api/v1/payments/:id
		payments.POST("/webhook/:gateway", controller.Webhook) // POST /api/v1/payments/webhook/:gateway
	}

	admin := rg.Group("/admin/transactions")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("/pending", controller.ListPendingTransactions)    // GET /api/v1/admin/transactions/pending
		admin.POST("/:id/recover", controller.RecoverTransaction)    // POST /api/v1/admin/transactions/:id/recover
		admin.POST("/recover-all", controller.RecoverAllTransactions) // POST /api/v1/admin/transactions/recover-all
		admin.POST("/recovery-sweep", controller.RunRecoverySweep)   // POST /api/v1/admin/transactions/recovery-sweep
	}
}
