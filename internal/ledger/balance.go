package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/models"
)

// Warning flags a transaction that no longer matches its account's current
// configuration (stale data after a polarity or kind edit). The transaction
// contributes zero to the balance; recomputation never fails because of it.
type Warning struct {
	TransactionID string
	Type          models.TransactionType
}

func (w Warning) String() string {
	return fmt.Sprintf("transaction %s has type %q invalid for its account's current configuration; skipped", w.TransactionID, w.Type)
}

// ComputeBalance replays every transaction of account a and returns the
// resulting balance: initial_balance plus the signed sum of all amounts.
// Signs come from the account's configuration at computation time, so
// editing an account's polarity reinterprets its full history on the next
// replay. Summation is commutative; transaction order does not matter.
func ComputeBalance(a models.Account, txs []models.Transaction) (decimal.Decimal, []Warning) {
	balance := a.InitialBalance
	var warnings []Warning

	for _, tx := range txs {
		sign, err := Sign(a, tx.Type)
		if err != nil {
			warnings = append(warnings, Warning{TransactionID: tx.ID, Type: tx.Type})
			continue
		}
		if sign > 0 {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
	}

	return balance, warnings
}
