package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cuentaclara/backend/internal/models"
)

func transactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "account_id", "category_id", "installment_id",
		"type", "amount", "description", "date", "created_at", "updated_at",
	})
}

func TestListTransactions(t *testing.T) {
	store, mock, closeFn := newTestStore(t)
	defer closeFn()

	t.Run("filters by account and type", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions WHERE user_id = \\$1 AND account_id = \\$2 AND type = \\$3").
			WithArgs("user1", "acct1", models.TypeExpense).
			WillReturnRows(transactionRows().AddRow(
				"tx1", "user1", "acct1", "cat1", nil,
				"expense", "25.99", "Lunch", time.Now(), time.Now(), time.Now()))

		txs, err := store.ListTransactions(context.Background(), TransactionFilter{
			UserID:    "user1",
			AccountID: "acct1",
			Type:      models.TypeExpense,
		})
		assert.NoError(t, err)
		assert.Len(t, txs, 1)
		assert.Equal(t, "tx1", txs[0].ID)
		assert.Nil(t, txs[0].InstallmentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("date range filter", func(t *testing.T) {
		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT (.+) FROM transactions WHERE user_id = \\$1 AND date >= \\$2 AND date <= \\$3").
			WithArgs("user1", from, to).
			WillReturnRows(transactionRows())

		txs, err := store.ListTransactions(context.Background(), TransactionFilter{
			UserID: "user1",
			From:   from,
			To:     to,
		})
		assert.NoError(t, err)
		assert.Empty(t, txs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateTransaction(t *testing.T) {
	store, mock, closeFn := newTestStore(t)
	defer closeFn()

	newTx := func() *models.Transaction {
		return &models.Transaction{
			UserID:     "user1",
			AccountID:  "acct1",
			CategoryID: "cat1",
			Type:       models.TypeExpense,
			Amount:     decimal.RequireFromString("50"),
			Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("row and balance land together", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE accounts SET balance = \\$1, updated_at = \\$2 WHERE id = \\$3 AND user_id = \\$4").
			WithArgs(decimal.RequireFromString("950"), sqlmock.AnyArg(), "acct1", "user1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		created, err := store.CreateTransaction(context.Background(), newTx(), decimal.RequireFromString("950"), nil)
		assert.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("installment payment updates all three rows", func(t *testing.T) {
		inst := &models.Installment{
			ID:              "inst1",
			RemainingAmount: decimal.Zero,
			Status:          models.InstallmentPaid,
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE accounts SET balance").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE installments SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, err := store.CreateTransaction(context.Background(), newTx(), decimal.RequireFromString("950"), inst)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("balance failure rolls back the row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE accounts SET balance").
			WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		_, err := store.CreateTransaction(context.Background(), newTx(), decimal.RequireFromString("950"), nil)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account surfaces as not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE accounts SET balance").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := store.CreateTransaction(context.Background(), newTx(), decimal.RequireFromString("950"), nil)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteTransaction(t *testing.T) {
	store, mock, closeFn := newTestStore(t)
	defer closeFn()

	t.Run("delete recomputes the balance in the same unit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT account_id FROM transactions WHERE id = \\$1 AND user_id = \\$2").
			WithArgs("tx1", "user1").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("acct1"))
		mock.ExpectExec("DELETE FROM transactions WHERE id = \\$1 AND user_id = \\$2").
			WithArgs("tx1", "user1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE accounts SET balance").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.DeleteTransaction(context.Background(), "user1", "tx1", decimal.RequireFromString("1000"))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT account_id FROM transactions WHERE id = \\$1 AND user_id = \\$2").
			WithArgs("missing", "user1").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}))
		mock.ExpectRollback()

		err := store.DeleteTransaction(context.Background(), "user1", "missing", decimal.Zero)
		assert.ErrorIs(t, err, ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
