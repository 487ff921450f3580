package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Balance report
		v1.GET("/balances", handler.GetBalances)

		// Ledger writes
		v1.POST("/wallets/:id/import", handler.ImportWallet)
		v1.PUT("/initial-balances", handler.SetInitialBalance)
	}
}
