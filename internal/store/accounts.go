package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/models"
)

const accountColumns = `id, user_id, name, type, is_current_account, payment_type,
	initial_balance, balance, credit_limit, has_installments, total_installments,
	is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var (
		a           models.Account
		paymentType sql.NullString
		creditLimit decimal.NullDecimal
		totalInst   sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.IsCurrentAccount,
		&paymentType, &a.InitialBalance, &a.Balance, &creditLimit,
		&a.HasInstallments, &totalInst, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paymentType.Valid {
		pt := models.PaymentType(paymentType.String)
		a.PaymentType = &pt
	}
	if creditLimit.Valid {
		a.CreditLimit = &creditLimit.Decimal
	}
	if totalInst.Valid {
		n := int(totalInst.Int64)
		a.TotalInstallments = &n
	}
	return &a, nil
}

func (p *Postgres) ListAccounts(ctx context.Context, userID string, includeInactive bool) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	if !includeInactive {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (p *Postgres) GetAccount(ctx context.Context, userID, id string) (*models.Account, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	return a, err
}

func (p *Postgres) CreateAccount(ctx context.Context, account *models.Account, plan []models.Installment) (*models.Account, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	account.ID = newID()
	account.CreatedAt = now()
	account.UpdatedAt = account.CreatedAt

	var paymentType *string
	if account.PaymentType != nil {
		s := string(*account.PaymentType)
		paymentType = &s
	}
	var creditLimit decimal.NullDecimal
	if account.CreditLimit != nil {
		creditLimit = decimal.NullDecimal{Decimal: *account.CreditLimit, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, is_current_account, payment_type,
			initial_balance, balance, credit_limit, has_installments, total_installments,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		account.ID, account.UserID, account.Name, account.Kind, account.IsCurrentAccount,
		nullString(paymentType), account.InitialBalance, account.Balance, creditLimit,
		account.HasInstallments, account.TotalInstallments, account.IsActive,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for i := range plan {
		inst := &plan[i]
		inst.ID = newID()
		inst.AccountID = account.ID
		inst.CreatedAt = account.CreatedAt
		inst.UpdatedAt = account.CreatedAt
		_, err = tx.ExecContext(ctx, `
			INSERT INTO installments (id, user_id, account_id, installment_number,
				amount, remaining_amount, due_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			inst.ID, inst.UserID, inst.AccountID, inst.InstallmentNumber,
			inst.Amount, inst.RemainingAmount, inst.DueDate, inst.Status,
			inst.CreatedAt, inst.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("create installment %d: %w", inst.InstallmentNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return account, nil
}

func (p *Postgres) UpdateAccount(ctx context.Context, userID, id string, upd AccountUpdate) (*models.Account, error) {
	sets := []string{"updated_at = $1"}
	args := []any{now()}
	next := 2

	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, next))
		args = append(args, val)
		next++
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Kind != nil {
		add("type", *upd.Kind)
	}
	if upd.IsCurrentAccount != nil {
		add("is_current_account", *upd.IsCurrentAccount)
	}
	if upd.ClearPaymentType {
		sets = append(sets, "payment_type = NULL")
	} else if upd.PaymentType != nil {
		add("payment_type", *upd.PaymentType)
	}
	if upd.ClearCreditLimit {
		sets = append(sets, "credit_limit = NULL")
	} else if upd.CreditLimit != nil {
		add("credit_limit", *upd.CreditLimit)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if upd.Balance != nil {
		add("balance", *upd.Balance)
	}

	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), next, next+1)
	args = append(args, id, userID)

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAccountNotFound
	}
	return p.GetAccount(ctx, userID, id)
}

// DeleteAccount removes the account and everything it owns. Dependents go
// first so the store's referential constraints hold; any failure aborts the
// whole delete.
func (p *Postgres) DeleteAccount(ctx context.Context, userID, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete account transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM installments WHERE account_id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete account installments: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	return tx.Commit()
}
