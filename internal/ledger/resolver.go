// Package ledger implements the balance computation rules of the finance
// tracker: which transaction types an account accepts, the sign each type
// contributes to the balance, full-replay balance computation, and the
// installment plan state machine. Everything in this package is pure; it
// never touches storage.
package ledger

import (
	"errors"

	"github.com/cuentaclara/backend/internal/models"
)

var (
	ErrInvalidTransactionType = errors.New("transaction type not valid for this account")
	ErrInvalidInstallmentPlan = errors.New("invalid installment plan")
	ErrInstallmentPaid        = errors.New("installment is already paid")
	ErrInvalidAmount          = errors.New("amount must be positive")
)

// Sign returns the direction (+1 or -1) a transaction of type t contributes
// to the balance of account a, or ErrInvalidTransactionType when t is not in
// the account's valid set.
//
// Current accounts use receivable/payable polarity: a receivable account
// tracks money owed to the user, so a payment received reduces it and a
// credit increases it. A payable account inverts both. Every other account
// kind uses plain income/expense polarity.
func Sign(a models.Account, t models.TransactionType) (int64, error) {
	if a.IsCurrentAccount {
		if a.PaymentType == nil {
			return 0, ErrInvalidTransactionType
		}
		switch *a.PaymentType {
		case models.PaymentReceivable:
			switch t {
			case models.TypePayment:
				return -1, nil
			case models.TypeCredit:
				return 1, nil
			}
		case models.PaymentPayable:
			switch t {
			case models.TypePayment:
				return 1, nil
			case models.TypeCredit:
				return -1, nil
			}
		}
		return 0, ErrInvalidTransactionType
	}

	switch t {
	case models.TypeIncome:
		return 1, nil
	case models.TypeExpense:
		return -1, nil
	}
	return 0, ErrInvalidTransactionType
}

// ValidTypes returns the transaction types that may be posted against
// account a, in a stable order.
func ValidTypes(a models.Account) []models.TransactionType {
	if a.IsCurrentAccount {
		return []models.TransactionType{models.TypePayment, models.TypeCredit}
	}
	return []models.TransactionType{models.TypeIncome, models.TypeExpense}
}

// TypeAllowed reports whether t is valid for account a.
func TypeAllowed(a models.Account, t models.TransactionType) bool {
	_, err := Sign(a, t)
	return err == nil
}
