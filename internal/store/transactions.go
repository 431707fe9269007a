package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/models"
)

const transactionColumns = `id, user_id, account_id, category_id, installment_id,
	type, amount, description, date, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var (
		t             models.Transaction
		installmentID sql.NullString
		description   sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &installmentID,
		&t.Type, &t.Amount, &description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if installmentID.Valid {
		t.InstallmentID = &installmentID.String
	}
	t.Description = description.String
	return &t, nil
}

func (p *Postgres) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}
	next := 2

	add := func(cond string, val any) {
		conds = append(conds, fmt.Sprintf(cond, next))
		args = append(args, val)
		next++
	}

	if f.AccountID != "" {
		add("account_id = $%d", f.AccountID)
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if !f.From.IsZero() {
		add("date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("date <= $%d", f.To)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY date DESC, created_at DESC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (p *Postgres) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	return t, err
}

// CreateTransaction is one unit of work: the new row, the owning account's
// replayed balance, and (for installment payments) the installment's new
// state all land together or not at all.
func (p *Postgres) CreateTransaction(ctx context.Context, t *models.Transaction, balance decimal.Decimal, inst *models.Installment) (*models.Transaction, error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback()

	t.ID = newID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, category_id, installment_id,
			type, amount, description, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.UserID, t.AccountID, t.CategoryID, nullString(t.InstallmentID),
		t.Type, t.Amount, t.Description, t.Date, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := updateBalanceTx(ctx, dbTx, t.AccountID, t.UserID, balance); err != nil {
		return nil, err
	}

	if inst != nil {
		if err := updateInstallmentTx(ctx, dbTx, inst.ID, t.UserID, inst.Status, inst.RemainingAmount); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Postgres) UpdateTransaction(ctx context.Context, userID, id string, upd TransactionUpdate, balance decimal.Decimal) (*models.Transaction, error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback()

	sets := []string{"updated_at = $1"}
	args := []any{now()}
	next := 2

	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, next))
		args = append(args, val)
		next++
	}

	if upd.CategoryID != nil {
		add("category_id", *upd.CategoryID)
	}
	if upd.Type != nil {
		add("type", *upd.Type)
	}
	if upd.Amount != nil {
		add("amount", *upd.Amount)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}

	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), next, next+1)
	args = append(args, id, userID)

	res, err := dbTx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrTransactionNotFound
	}

	var accountID string
	if err := dbTx.QueryRowContext(ctx,
		`SELECT account_id FROM transactions WHERE id = $1`, id).Scan(&accountID); err != nil {
		return nil, err
	}
	if err := updateBalanceTx(ctx, dbTx, accountID, userID, balance); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return p.GetTransaction(ctx, userID, id)
}

func (p *Postgres) DeleteTransaction(ctx context.Context, userID, id string, balance decimal.Decimal) error {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	var accountID string
	err = dbTx.QueryRowContext(ctx,
		`SELECT account_id FROM transactions WHERE id = $1 AND user_id = $2`, id, userID).Scan(&accountID)
	if err == sql.ErrNoRows {
		return ErrTransactionNotFound
	}
	if err != nil {
		return err
	}

	if _, err := dbTx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return err
	}
	if err := updateBalanceTx(ctx, dbTx, accountID, userID, balance); err != nil {
		return err
	}

	return dbTx.Commit()
}

func updateBalanceTx(ctx context.Context, dbTx *sql.Tx, accountID, userID string, balance decimal.Decimal) error {
	res, err := dbTx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		balance, now(), accountID, userID)
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
	return nil
}
