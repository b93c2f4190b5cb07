package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// TypeSummary aggregates one entry type
type TypeSummary struct {
	Type    string  `json:"type"`    // income or expense
	Total   float64 `json:"total"`   // Sum of amounts
	Count   int64   `json:"count"`   // Number of entries
	Average float64 `json:"average"` // Mean amount
}

// SummaryResponse is the caller's overall financial position
type SummaryResponse struct {
	Types         []TypeSummary `json:"types"`         // Per-type breakdown
	TotalIncome   float64       `json:"totalIncome"`   // Sum of income entries
	TotalExpenses float64       `json:"totalExpenses"` // Sum of expense entries
	Balance       float64       `json:"balance"`       // Income minus expenses
}

// CategoryStat is the full aggregate for one entry type
type CategoryStat struct {
	Type    string  `json:"type"`                         // income or expense
	Count   int64   `json:"count"`                        // Number of entries
	Total   float64 `json:"total"`                        // Sum of amounts
	Average float64 `json:"average"`                      // Mean amount
	Max     float64 `json:"max" gorm:"column:max_amount"` // Largest single entry
	Min     float64 `json:"min" gorm:"column:min_amount"` // Smallest single entry
}

// SummaryHandler returns per-type sums plus the derived balance, optionally
// restricted to a date range. The unranged summary is cached per user.
func SummaryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		query := db.Model(&domain.Expense{}).Where("user_id = ?", userID) // Always scoped to the caller
		ranged := false                                                   // Whether a date range applies
		if s := c.Query("start"); s != "" {
			start, err := parseDate(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []FieldError{
					{Field: "start", Message: "must be an RFC3339 or YYYY-MM-DD date"},
				}})
				return
			}
			query = query.Where("date >= ?", start)
			ranged = true
		}
		if e := c.Query("end"); e != "" {
			end, err := parseDate(e)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []FieldError{
					{Field: "end", Message: "must be an RFC3339 or YYYY-MM-DD date"},
				}})
				return
			}
			query = query.Where("date <= ?", end)
			ranged = true
		}
		ctx := context.Background()                             // Context for Redis operations
		cacheKey := "summary:user:" + strconv.Itoa(int(userID)) // Cache key for the unranged summary
		// Ranged summaries have an unbounded key space, so only the unranged
		// view is cached
		if !ranged {
			var cached SummaryResponse
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"message": "Summary fetched", "summary": cached, "cached": true})
				return
			}
		}
		var rows []TypeSummary // Per-type aggregation rows
		if err := query.
			Select("type, SUM(amount) AS total, COUNT(*) AS count, AVG(amount) AS average").
			Group("type").
			Scan(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
			return
		}
		// Derive the overall position from the per-type rows
		summary := SummaryResponse{Types: rows}
		for _, row := range rows {
			switch row.Type {
			case domain.TypeIncome:
				summary.TotalIncome = row.Total
			case domain.TypeExpense:
				summary.TotalExpenses = row.Total
			}
		}
		summary.Balance = summary.TotalIncome - summary.TotalExpenses
		if !ranged {
			_ = utils.SetCache(ctx, rdb, cacheKey, summary, cacheTTL) // Cache the unranged summary
		}
		c.JSON(http.StatusOK, gin.H{"message": "Summary fetched", "summary": summary, "cached": false})
	}
}

// CategoryStatsHandler returns count/total/average/max/min per entry type,
// sorted by total descending. Cached per user.
func CategoryStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                           // Context for Redis operations
		cacheKey := "stats:user:" + strconv.Itoa(int(userID)) // Cache key for the stats view
		var cached []CategoryStat                             // Cached stats, if present
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"message": "Statistics fetched", "stats": cached, "cached": true})
			return
		}
		var stats []CategoryStat // Per-type aggregation rows
		if err := db.Model(&domain.Expense{}).
			Where("user_id = ?", userID).
			Select("type, COUNT(*) AS count, SUM(amount) AS total, AVG(amount) AS average, MAX(amount) AS max_amount, MIN(amount) AS min_amount").
			Group("type").
			Order("total DESC").
			Scan(&stats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, stats, cacheTTL) // Cache the stats view
		c.JSON(http.StatusOK, gin.H{"message": "Statistics fetched", "stats": stats, "cached": false})
	}
}
