package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the payload for creating a new user
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`           // Must be a valid email
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt caps input at 72 bytes
	Name     string `json:"name" binding:"required,min=1"`            // Display name must be provided
}

// LoginRequest is the payload for authenticating a user
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// RegisterHandler creates a new user with a hashed password
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Return every violation, not just the first
			respondValidationError(c, err)
			return
		}
		// Hash the password before storing
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with lowercase email to ensure uniqueness
		user := domain.User{Email: strings.ToLower(req.Email), Password: string(hash), Name: req.Name}
		if err := db.Create(&user).Error; err != nil {
			// Creation fails on the unique email index
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // User ID
		}).Info("User registered")
		// Return the created user (password is never serialized)
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// Same message whether the email or the password was wrong
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
	}
}

// MeHandler returns the authenticated user's profile
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token may outlive a deleted user
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User fetched", "user": user})
	}
}
