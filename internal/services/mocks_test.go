package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/cuentaclara/backend/internal/models"
	"github.com/cuentaclara/backend/internal/store"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListAccounts(ctx context.Context, userID string, includeInactive bool) ([]models.Account, error) {
	args := m.Called(ctx, userID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockStore) GetAccount(ctx context.Context, userID, id string) (*models.Account, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) CreateAccount(ctx context.Context, account *models.Account, plan []models.Installment) (*models.Account, error) {
	args := m.Called(ctx, account, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) UpdateAccount(ctx context.Context, userID, id string, upd store.AccountUpdate) (*models.Account, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStore) DeleteAccount(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockStore) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]models.Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) CreateTransaction(ctx context.Context, tx *models.Transaction, balance decimal.Decimal, inst *models.Installment) (*models.Transaction, error) {
	args := m.Called(ctx, tx, balance, inst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) UpdateTransaction(ctx context.Context, userID, id string, upd store.TransactionUpdate, balance decimal.Decimal) (*models.Transaction, error) {
	args := m.Called(ctx, userID, id, upd, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) DeleteTransaction(ctx context.Context, userID, id string, balance decimal.Decimal) error {
	args := m.Called(ctx, userID, id, balance)
	return args.Error(0)
}

func (m *MockStore) ListInstallments(ctx context.Context, userID, accountID string, statuses []models.InstallmentStatus) ([]models.Installment, error) {
	args := m.Called(ctx, userID, accountID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Installment), args.Error(1)
}

func (m *MockStore) GetInstallment(ctx context.Context, userID, id string) (*models.Installment, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Installment), args.Error(1)
}

func (m *MockStore) UpdateInstallment(ctx context.Context, userID, id string, upd store.InstallmentUpdate) (*models.Installment, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Installment), args.Error(1)
}

func (m *MockStore) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockStore) GetCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockStore) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockStore) UpdateCategory(ctx context.Context, userID, id string, name, description string, ctype models.TransactionType) (*models.Category, error) {
	args := m.Called(ctx, userID, id, name, description, ctype)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockStore) DeleteCategory(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
