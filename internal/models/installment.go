package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the closed set of installment states. Paid is
// terminal: a paid installment never becomes pending or partial again.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
)

func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentPending, InstallmentPartial, InstallmentPaid:
		return true
	}
	return false
}

// Installment is one scheduled due within an account's structured payment
// plan. RemainingAmount only ever decreases, and is clamped at zero.
type Installment struct {
	ID                string            `json:"id" db:"id"`
	UserID            string            `json:"user_id" db:"user_id"`
	AccountID         string            `json:"account_id" db:"account_id"`
	InstallmentNumber int               `json:"installment_number" db:"installment_number"`
	Amount            decimal.Decimal   `json:"amount" db:"amount"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount" db:"remaining_amount"`
	DueDate           time.Time         `json:"due_date" db:"due_date"`
	Status            InstallmentStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
