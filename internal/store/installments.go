package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/models"
)

const installmentColumns = `id, user_id, account_id, installment_number,
	amount, remaining_amount, due_date, status, created_at, updated_at`

func scanInstallment(row interface{ Scan(...any) error }) (*models.Installment, error) {
	var i models.Installment
	err := row.Scan(&i.ID, &i.UserID, &i.AccountID, &i.InstallmentNumber,
		&i.Amount, &i.RemainingAmount, &i.DueDate, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListInstallments returns the account's installments in installment_number
// order, optionally restricted to a status set (the UI only ever asks for
// pending and partial).
func (p *Postgres) ListInstallments(ctx context.Context, userID, accountID string, statuses []models.InstallmentStatus) ([]models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE account_id = $1 AND user_id = $2`
	args := []any{accountID, userID}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, s := range statuses {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, s)
		}
		query += ` AND status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY installment_number`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []models.Installment
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, *i)
	}
	return installments, rows.Err()
}

func (p *Postgres) GetInstallment(ctx context.Context, userID, id string) (*models.Installment, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE id = $1 AND user_id = $2`, id, userID)
	i, err := scanInstallment(row)
	if err == sql.ErrNoRows {
		return nil, ErrInstallmentNotFound
	}
	return i, err
}

func (p *Postgres) UpdateInstallment(ctx context.Context, userID, id string, upd InstallmentUpdate) (*models.Installment, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE installments SET status = $1, remaining_amount = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		upd.Status, upd.RemainingAmount, now(), id, userID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInstallmentNotFound
	}
	return p.GetInstallment(ctx, userID, id)
}

func updateInstallmentTx(ctx context.Context, dbTx *sql.Tx, id, userID string, status models.InstallmentStatus, remaining decimal.Decimal) error {
	res, err := dbTx.ExecContext(ctx,
		`UPDATE installments SET status = $1, remaining_amount = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		status, remaining, now(), id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInstallmentNotFound
	}
	return nil
}
