package api

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Validator used by gin's binding layer
)

// FieldError describes a single validation violation on one request field
type FieldError struct {
	Field   string `json:"field"`   // Lowercased field name
	Message string `json:"message"` // Human-readable constraint description
}

// validationDetails turns a binding error into the full list of violations,
// not just the first one
func validationDetails(err error) []FieldError {
	var verrs validator.ValidationErrors
	// Non-validator errors (malformed JSON, wrong types) have no field detail
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   strings.ToLower(fe.Field()), // Field name as it appears in JSON
			Message: violationMessage(fe),        // Constraint that was violated
		})
	}
	return details
}

// violationMessage maps a validator tag to a readable message
func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must have at least " + fe.Param() + " characters or items"
	case "max":
		return "must have at most " + fe.Param() + " characters or items"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// respondValidationError returns 400 with structured per-field detail
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": validationDetails(err)})
}

// currentUserID reads the authenticated user's ID set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID") // Set by JWTAuthMiddleware
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
