package domain

import "time"

// Expense entry types
const (
	TypeIncome  = "income"  // Money coming in
	TypeExpense = "expense" // Money going out
)

// Expense Model
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`   // Primary key
	Title       string    `gorm:"not null" json:"title"`  // Short title of the entry
	Description string    `json:"description"`            // Optional free-form description
	Amount      float64   `gorm:"not null" json:"amount"` // Always positive, sign carried by Type
	Date        time.Time `gorm:"index" json:"date"`      // When the transaction happened
	Type        string    `gorm:"not null" json:"type"`   // Entry type: income or expense
	UserID      uint      `gorm:"index" json:"userId"`    // Owning user, non-cascading reference
}
