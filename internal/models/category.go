package models

import "time"

// Category classifies transactions as income or expense. Default categories
// ship with the application and cannot be deleted by the user.
type Category struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	Name        string          `json:"name" db:"name"`
	Type        TransactionType `json:"type" db:"type"`
	Description string          `json:"description,omitempty" db:"description"`
	IsDefault   bool            `json:"is_default" db:"is_default"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsValidCategoryType reports whether t is usable as a category type.
// Categories only come in income/expense flavors; payment and credit are
// transaction-level concepts.
func IsValidCategoryType(t TransactionType) bool {
	return t == TypeIncome || t == TypeExpense
}
