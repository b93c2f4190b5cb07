package api

import (
	"finance_tracker/internal/middleware" // JWT guard

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRoutes mounts the user and expense resource groups on the engine.
// All dependencies are injected explicitly; nothing here is package state.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, jwtSecret string) {
	// Auth routes
	r.POST("/user/register", RegisterHandler(db))                             // Registration endpoint
	r.POST("/user/login", LoginHandler(db, jwtSecret))                        // Login endpoint
	r.GET("/user/me", middleware.JWTAuthMiddleware(jwtSecret), MeHandler(db)) // Profile endpoint

	// Expense routes (protected by JWT)
	expenseGroup := r.Group("/expense")
	expenseGroup.Use(middleware.JWTAuthMiddleware(jwtSecret))
	expenseGroup.POST("", CreateExpenseHandler(db, rdb))                  // Create single expense
	expenseGroup.POST("/bulk", BulkCreateExpensesHandler(db, rdb))        // Create up to 100 expenses
	expenseGroup.GET("", ListExpensesHandler(db, rdb))                    // List all, date descending
	expenseGroup.GET("/recent", ListRecentExpensesHandler(db))            // Last 30 days
	expenseGroup.GET("/range", ListExpensesByRangeHandler(db))            // Inclusive date range
	expenseGroup.GET("/top", ListTopExpensesHandler(db))                  // Largest by amount
	expenseGroup.GET("/summary", SummaryHandler(db, rdb))                 // Totals and balance
	expenseGroup.GET("/stats", CategoryStatsHandler(db, rdb))             // Per-type statistics
	expenseGroup.DELETE("/bulk", BulkDeleteExpensesHandler(db, rdb))      // Delete up to 100 by ID
	expenseGroup.GET("/:id", GetExpenseHandler(db))                       // Fetch one owned expense
	expenseGroup.PATCH("/:id", UpdateExpenseHandler(db, rdb))             // Partial update
	expenseGroup.DELETE("/:id", DeleteExpenseHandler(db, rdb))            // Delete one owned expense
	expenseGroup.POST("/:id/duplicate", DuplicateExpenseHandler(db, rdb)) // Copy an owned expense
}
