package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the closed set of account types.
type AccountKind string

const (
	KindChecking AccountKind = "checking"
	KindSavings  AccountKind = "savings"
	KindCredit   AccountKind = "credit"
	KindDebit    AccountKind = "debit"
	KindCash     AccountKind = "cash"
)

func (k AccountKind) IsValid() bool {
	switch k {
	case KindChecking, KindSavings, KindCredit, KindDebit, KindCash:
		return true
	}
	return false
}

// PaymentType is the receivable/payable polarity of a current account.
type PaymentType string

const (
	PaymentReceivable PaymentType = "receivable"
	PaymentPayable    PaymentType = "payable"
)

func (p PaymentType) IsValid() bool {
	return p == PaymentReceivable || p == PaymentPayable
}

// Account represents a user's account. Balance is a cache of the replayed
// balance (initial_balance plus the signed sum of all transactions); it is
// never authoritative on its own.
type Account struct {
	ID                string           `json:"id" db:"id"`
	UserID            string           `json:"user_id" db:"user_id"`
	Name              string           `json:"name" db:"name"`
	Kind              AccountKind      `json:"type" db:"type"`
	IsCurrentAccount  bool             `json:"is_current_account" db:"is_current_account"`
	PaymentType       *PaymentType     `json:"payment_type,omitempty" db:"payment_type"`
	InitialBalance    decimal.Decimal  `json:"initial_balance" db:"initial_balance"`
	Balance           decimal.Decimal  `json:"calculated_balance" db:"balance"`
	CreditLimit       *decimal.Decimal `json:"credit_limit,omitempty" db:"credit_limit"`
	HasInstallments   bool             `json:"has_installments" db:"has_installments"`
	TotalInstallments *int             `json:"total_installments,omitempty" db:"total_installments"`
	IsActive          bool             `json:"is_active" db:"is_active"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}
