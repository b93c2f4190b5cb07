package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error classification
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time handling

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Limits for top-N queries and cached views
const (
	topDefaultLimit = 10 // Default result count for top queries
	topMaxLimit     = 50 // Max result count for top queries
	cacheTTL        = 60 * time.Second
)

// CreateExpenseRequest is the payload for a single expense entry
type CreateExpenseRequest struct {
	Title       string    `json:"title" binding:"required,min=1"`               // Title must be provided
	Description string    `json:"description"`                                  // Optional description
	Amount      float64   `json:"amount" binding:"required,gt=0"`               // Amount must be positive
	Date        time.Time `json:"date"`                                         // Defaults to now when omitted
	Type        string    `json:"type" binding:"required,oneof=income expense"` // Entry type enum
}

// BulkCreateRequest carries up to 100 expense entries in one call
type BulkCreateRequest struct {
	Expenses []CreateExpenseRequest `json:"expenses" binding:"required,min=1,max=100,dive"` // Each entry validated individually
}

// BulkDeleteRequest carries up to 100 expense IDs to delete in one call
type BulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1,max=100"` // IDs not owned by the caller are ignored
}

// UpdateExpenseRequest carries a partial update; nil fields are left untouched
type UpdateExpenseRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1"`               // New title, if any
	Description *string    `json:"description"`                                   // New description, if any
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0"`               // New amount, must stay positive
	Date        *time.Time `json:"date"`                                          // New date, if any
	Type        *string    `json:"type" binding:"omitempty,oneof=income expense"` // New type, must stay in the enum
}

// toExpense builds the stored record, forcing ownership to the caller
func (r CreateExpenseRequest) toExpense(userID uint) domain.Expense {
	date := r.Date
	if date.IsZero() {
		date = time.Now() // Default the date when the client omitted it
	}
	return domain.Expense{
		Title:       r.Title,       // Entry title
		Description: r.Description, // Optional description
		Amount:      r.Amount,      // Validated positive amount
		Date:        date,          // Transaction date
		Type:        r.Type,        // Validated type enum
		UserID:      userID,        // Never taken from the payload
	}
}

// findOwnedExpense fetches an expense scoped to its owner. A record owned by
// another user is indistinguishable from a missing one.
func findOwnedExpense(db *gorm.DB, id string, userID uint) (*domain.Expense, error) {
	expenseID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, gorm.ErrRecordNotFound // Non-numeric IDs cannot exist
	}
	var expense domain.Expense
	if err := db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// respondOwnedLookupError maps a lookup failure to a uniform 404 or a 500
func respondOwnedLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Absent and not-owned look identical to the caller
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expense"})
}

// expenseCacheKeys lists the cached views that a mutation invalidates
func expenseCacheKeys(userID uint) []string {
	uid := strconv.Itoa(int(userID))
	return []string{
		"expenses:user:" + uid, // List-all view
		"summary:user:" + uid,  // Summary statistics
		"stats:user:" + uid,    // Per-type statistics
	}
}

// invalidateExpenseCache drops the caller's cached views after a mutation
func invalidateExpenseCache(rdb *redis.Client, userID uint) {
	_ = utils.DeleteCache(context.Background(), rdb, expenseCacheKeys(userID)...)
}

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// CreateExpenseHandler inserts a single expense owned by the caller
func CreateExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		expense := req.toExpense(userID) // Ownership forced to the caller
		if err := db.Create(&expense).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create expense")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
			return
		}
		invalidateExpenseCache(rdb, userID) // Drop stale cached views
		// Return the created record
		c.JSON(http.StatusCreated, gin.H{"message": "Expense created", "expense": expense})
	}
}

// BulkCreateExpensesHandler inserts up to 100 expenses in one store call.
// The batch is not transactional as a unit; a mid-batch failure may leave a
// subset applied.
func BulkCreateExpensesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req BulkCreateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		// Build all records before touching the store
		expenses := make([]domain.Expense, len(req.Expenses))
		for i, e := range req.Expenses {
			expenses[i] = e.toExpense(userID)
		}
		if err := db.Create(&expenses).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,            // User ID
				"count":   len(req.Expenses), // Requested batch size
				"error":   err.Error(),       // Error message
			}).Error("Bulk create failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expenses"})
			return
		}
		invalidateExpenseCache(rdb, userID) // Drop stale cached views
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Expenses created", // Success message
			"count":    len(expenses),      // Number of records inserted
			"expenses": expenses,           // The inserted records with IDs
		})
	}
}

// ListExpensesHandler returns all of the caller's expenses, newest first
func ListExpensesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                              // Context for Redis operations
		cacheKey := "expenses:user:" + strconv.Itoa(int(userID)) // Cache key for the list-all view
		var cached []domain.Expense                              // Cached list, if present
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			// Return cached list
			c.JSON(http.StatusOK, gin.H{"message": "Expenses fetched", "expenses": cached, "cached": true})
			return
		}
		var expenses []domain.Expense // Slice to hold expenses
		if err := db.Where("user_id = ?", userID).Order("date desc").Find(&expenses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, expenses, cacheTTL) // Cache the list
		c.JSON(http.StatusOK, gin.H{"message": "Expenses fetched", "expenses": expenses, "cached": false})
	}
}

// ListRecentExpensesHandler returns the caller's expenses from the last 30 days
func ListRecentExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		since := time.Now().AddDate(0, 0, -30) // Cutoff 30 days back
		var expenses []domain.Expense          // Slice to hold expenses
		if err := db.Where("user_id = ? AND date >= ?", userID, since).
			Order("date desc").
			Find(&expenses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expenses fetched", "expenses": expenses})
	}
}

// ListExpensesByRangeHandler returns the caller's expenses within [start, end]
func ListExpensesByRangeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Both bounds are required and must be parseable dates
		details := []FieldError{}
		start, err := parseDate(c.Query("start"))
		if err != nil {
			details = append(details, FieldError{Field: "start", Message: "must be an RFC3339 or YYYY-MM-DD date"})
		}
		end, err := parseDate(c.Query("end"))
		if err != nil {
			details = append(details, FieldError{Field: "end", Message: "must be an RFC3339 or YYYY-MM-DD date"})
		}
		if len(details) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
			return
		}
		var expenses []domain.Expense // Slice to hold expenses
		if err := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
			Order("date desc").
			Find(&expenses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expenses fetched", "expenses": expenses})
	}
}

// ListTopExpensesHandler returns the caller's largest entries by amount,
// optionally filtered by type. Limit defaults to 10 and is capped at 50.
func ListTopExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		limit := topDefaultLimit // Default result count
		if l := c.Query("limit"); l != "" {
			v, err := strconv.Atoi(l)
			// Reject out-of-range limits instead of silently clamping
			if err != nil || v < 1 || v > topMaxLimit {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []FieldError{
					{Field: "limit", Message: "must be a number between 1 and 50"},
				}})
				return
			}
			limit = v
		}
		query := db.Where("user_id = ?", userID) // Always scoped to the caller
		if t := c.Query("type"); t != "" {
			// Optional type filter must stay within the enum
			if t != domain.TypeIncome && t != domain.TypeExpense {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []FieldError{
					{Field: "type", Message: "must be one of: income, expense"},
				}})
				return
			}
			query = query.Where("type = ?", t)
		}
		var expenses []domain.Expense // Slice to hold expenses
		if err := query.Order("amount desc").Limit(limit).Find(&expenses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expenses fetched", "expenses": expenses})
	}
}

// GetExpenseHandler returns a single expense owned by the caller
func GetExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		expense, err := findOwnedExpense(db, c.Param("id"), userID) // Scoped lookup
		if err != nil {
			respondOwnedLookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Expense fetched", "expense": expense})
	}
}

// UpdateExpenseHandler merges validated partial fields into an owned expense
func UpdateExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		expense, err := findOwnedExpense(db, c.Param("id"), userID) // Scoped lookup
		if err != nil {
			respondOwnedLookupError(c, err)
			return
		}
		// Merge only the fields the client sent
		if req.Title != nil {
			expense.Title = *req.Title
		}
		if req.Description != nil {
			expense.Description = *req.Description
		}
		if req.Amount != nil {
			expense.Amount = *req.Amount
		}
		if req.Date != nil {
			expense.Date = *req.Date
		}
		if req.Type != nil {
			expense.Type = *req.Type
		}
		if err := db.Save(expense).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"expense_id": expense.ID,  // Expense ID
				"error":      err.Error(), // Error message
			}).Error("Failed to update expense")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
			return
		}
		invalidateExpenseCache(rdb, userID) // Drop stale cached views
		c.JSON(http.StatusOK, gin.H{"message": "Expense updated", "expense": expense})
	}
}

// DeleteExpenseHandler removes a single expense owned by the caller
func DeleteExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		expense, err := findOwnedExpense(db, c.Param("id"), userID) // Scoped lookup
		if err != nil {
			respondOwnedLookupError(c, err)
			return
		}
		if err := db.Delete(expense).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"expense_id": expense.ID,  // Expense ID
				"error":      err.Error(), // Error message
			}).Error("Failed to delete expense")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
			return
		}
		invalidateExpenseCache(rdb, userID) // Drop stale cached views
		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
	}
}

// DuplicateExpenseHandler copies an owned expense under a "(Copy)" title,
// dated at duplication time rather than the original's date
func DuplicateExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		source, err := findOwnedExpense(db, c.Param("id"), userID) // Scoped lookup of the source
		if err != nil {
			respondOwnedLookupError(c, err)
			return
		}
		// New record, new ID, fresh date
		dup := domain.Expense{
			Title:       source.Title + " (Copy)", // Marked as a copy
			Description: source.Description,       // Same description
			Amount:      source.Amount,            // Same amount
			Date:        time.Now(),               // Duplication time, not the original's date
			Type:        source.Type,              // Same type
			UserID:      userID,                   // Same owner
		}
		if err := db.Create(&dup).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"expense_id": source.ID,   // Source expense ID
				"error":      err.Error(), // Error message
			}).Error("Failed to duplicate expense")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to duplicate expense"})
			return
		}
		invalidateExpenseCache(rdb, userID) // Drop stale cached views
		c.JSON(http.StatusCreated, gin.H{"message": "Expense duplicated", "expense": dup})
	}
}

// BulkDeleteExpensesHandler deletes up to 100 expenses by ID. IDs that do not
// exist or belong to another user are silently skipped; the response carries
// the count of records actually removed.
func BulkDeleteExpensesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req BulkDeleteRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		// One query filters on both the ID list and the owner
		result := db.Where("id IN ? AND user_id = ?", req.IDs, userID).Delete(&domain.Expense{})
		if result.Error != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,               // User ID
				"count":   len(req.IDs),         // Requested batch size
				"error":   result.Error.Error(), // Error message
			}).Error("Bulk delete failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expenses"})
			return
		}
		invalidateExpenseCache(rdb, userID) // Drop stale cached views
		c.JSON(http.StatusOK, gin.H{
			"message":      "Expenses deleted",  // Success message
			"deletedCount": result.RowsAffected, // Records actually removed
		})
	}
}
