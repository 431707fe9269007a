package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of transaction types. Which subset is
// valid for a given account depends on the account's configuration; that
// decision belongs to the ledger package.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
	TypePayment TransactionType = "payment"
	TypeCredit  TransactionType = "credit"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypePayment, TypeCredit:
		return true
	}
	return false
}

// Transaction represents a single movement against an account. Amount is
// always strictly positive; the direction of its effect on the balance is
// derived from the owning account's configuration and the type, never stored.
type Transaction struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	AccountID     string          `json:"account_id" db:"account_id"`
	CategoryID    string          `json:"category_id" db:"category_id"`
	InstallmentID *string         `json:"installment_id,omitempty" db:"installment_id"`
	Type          TransactionType `json:"type" db:"type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description,omitempty" db:"description"`
	Date          time.Time       `json:"date" db:"date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
