// Package store is the data-access collaborator for the finance tracker.
// It exposes the narrow interface the services consume and a Postgres
// implementation of it. Atomicity of each request-scoped unit of work
// (row change + recomputed balance + installment mutation) is the store's
// responsibility, delivered through a single database transaction.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/models"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInstallmentNotFound = errors.New("installment not found")
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// UserID is always required.
type TransactionFilter struct {
	UserID     string
	AccountID  string
	CategoryID string
	Type       models.TransactionType
	From       time.Time
	To         time.Time
}

// AccountUpdate carries the fields an account edit may change. Nil pointers
// leave the stored value untouched. Balance is set by the caller after
// recomputing under the (possibly new) polarity rules.
type AccountUpdate struct {
	Name             *string
	Kind             *models.AccountKind
	IsCurrentAccount *bool
	PaymentType      *models.PaymentType
	ClearPaymentType bool
	CreditLimit      *decimal.Decimal
	ClearCreditLimit bool
	IsActive         *bool
	Balance          *decimal.Decimal
}

// TransactionUpdate carries the fields a transaction edit may change.
type TransactionUpdate struct {
	CategoryID  *string
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
}

// InstallmentUpdate mutates an installment's payment state.
type InstallmentUpdate struct {
	Status          models.InstallmentStatus
	RemainingAmount decimal.Decimal
}

// Store is the contract the services require of the backing store. Every
// mutating method is atomic: it either fully applies or leaves no trace.
// Errors other than the NotFound sentinels propagate unchanged from the
// underlying store.
type Store interface {
	ListAccounts(ctx context.Context, userID string, includeInactive bool) ([]models.Account, error)
	GetAccount(ctx context.Context, userID, id string) (*models.Account, error)
	// CreateAccount persists the account and its installment plan (possibly
	// empty) in one transaction.
	CreateAccount(ctx context.Context, account *models.Account, plan []models.Installment) (*models.Account, error)
	// UpdateAccount applies the partial update and returns the stored row.
	UpdateAccount(ctx context.Context, userID, id string, upd AccountUpdate) (*models.Account, error)
	// DeleteAccount removes the account's transactions, then its
	// installments, then the account itself, aborting on the first failure.
	DeleteAccount(ctx context.Context, userID, id string) error

	ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	// CreateTransaction persists the transaction, the owning account's
	// recomputed balance, and, when inst is non-nil, the installment's new
	// payment state, all in one transaction.
	CreateTransaction(ctx context.Context, tx *models.Transaction, balance decimal.Decimal, inst *models.Installment) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, upd TransactionUpdate, balance decimal.Decimal) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string, balance decimal.Decimal) error

	ListInstallments(ctx context.Context, userID, accountID string, statuses []models.InstallmentStatus) ([]models.Installment, error)
	GetInstallment(ctx context.Context, userID, id string) (*models.Installment, error)
	UpdateInstallment(ctx context.Context, userID, id string, upd InstallmentUpdate) (*models.Installment, error)

	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategory(ctx context.Context, userID, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, id string, name, description string, ctype models.TransactionType) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
}
