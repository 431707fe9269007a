package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/models"
)

// BuildPlan generates the full installment schedule for an account created
// with a structured payment plan: total_installments dues of
// initial_balance/N each, due at monthly intervals starting from createdAt.
// The caller persists the whole batch atomically together with the account.
func BuildPlan(a models.Account, createdAt time.Time) ([]models.Installment, error) {
	if !a.HasInstallments {
		return nil, nil
	}
	if a.TotalInstallments == nil || *a.TotalInstallments <= 0 {
		return nil, fmt.Errorf("%w: total_installments must be a positive integer", ErrInvalidInstallmentPlan)
	}
	if !a.InitialBalance.IsPositive() {
		return nil, fmt.Errorf("%w: initial balance must be positive", ErrInvalidInstallmentPlan)
	}

	n := *a.TotalInstallments
	amount := a.InitialBalance.DivRound(decimal.NewFromInt(int64(n)), 2)

	plan := make([]models.Installment, n)
	for i := 0; i < n; i++ {
		plan[i] = models.Installment{
			UserID:            a.UserID,
			AccountID:         a.ID,
			InstallmentNumber: i + 1,
			Amount:            amount,
			RemainingAmount:   amount,
			DueDate:           createdAt.AddDate(0, i, 0),
			Status:            models.InstallmentPending,
		}
	}
	return plan, nil
}

// ApplyPayment advances an installment's state for a payment of the given
// amount. Paying at least the remaining amount settles the installment; any
// excess is discarded, never carried over or refunded. Paying less leaves it
// partial. The remaining amount is clamped at zero and never increases.
func ApplyPayment(inst models.Installment, amount decimal.Decimal) (models.Installment, error) {
	if inst.Status == models.InstallmentPaid {
		return inst, ErrInstallmentPaid
	}
	if !amount.IsPositive() {
		return inst, ErrInvalidAmount
	}

	if amount.GreaterThanOrEqual(inst.RemainingAmount) {
		inst.RemainingAmount = decimal.Zero
		inst.Status = models.InstallmentPaid
	} else {
		inst.RemainingAmount = inst.RemainingAmount.Sub(amount)
		inst.Status = models.InstallmentPartial
	}
	return inst, nil
}
