package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cuentaclara/backend/internal/models"
	"github.com/cuentaclara/backend/internal/store"
)

func savingsAccount() *models.Account {
	return &models.Account{
		ID:             "acct1",
		UserID:         "user1",
		Name:           "Savings",
		Kind:           models.KindSavings,
		InitialBalance: decimal.RequireFromString("1000"),
		Balance:        decimal.RequireFromString("1000"),
		IsActive:       true,
	}
}

func payableAccount() *models.Account {
	pt := models.PaymentPayable
	return &models.Account{
		ID:               "acct2",
		UserID:           "user1",
		Name:             "TV financing",
		Kind:             models.KindChecking,
		IsCurrentAccount: true,
		PaymentType:      &pt,
		InitialBalance:   decimal.RequireFromString("1200"),
		Balance:          decimal.RequireFromString("1200"),
		IsActive:         true,
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Run("expense replays the balance and returns the account", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetAccount", mock.Anything, "user1", "acct1").Return(savingsAccount(), nil)
		st.On("GetCategory", mock.Anything, "user1", "cat1").Return(&models.Category{ID: "cat1"}, nil)
		st.On("ListTransactions", mock.Anything, store.TransactionFilter{UserID: "user1", AccountID: "acct1"}).
			Return([]models.Transaction{
				{ID: "tx0", Type: models.TypeIncome, Amount: decimal.RequireFromString("500")},
			}, nil)
		st.On("CreateTransaction", mock.Anything, mock.Anything,
			decimal.RequireFromString("1450"), (*models.Installment)(nil)).
			Return(&models.Transaction{ID: "tx1", Type: models.TypeExpense}, nil)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct1","category_id":"cat1","type":"expense","amount":"50","date":"2025-03-10"}`, nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		st.AssertExpectations(t)

		var resp map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp, "transaction")
		assert.Contains(t, resp, "account")

		var account models.Account
		assert.NoError(t, json.Unmarshal(resp["account"], &account))
		assert.True(t, decimal.RequireFromString("1450").Equal(account.Balance))
	})

	t.Run("type invalid for the account rejected before persistence", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetAccount", mock.Anything, "user1", "acct2").Return(payableAccount(), nil)
		st.On("GetCategory", mock.Anything, "user1", "cat1").Return(&models.Category{ID: "cat1"}, nil)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct2","category_id":"cat1","type":"expense","amount":"50","date":"2025-03-10"}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		st.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment settles its installment in the same unit", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetAccount", mock.Anything, "user1", "acct2").Return(payableAccount(), nil)
		st.On("GetCategory", mock.Anything, "user1", "cat1").Return(&models.Category{ID: "cat1"}, nil)
		st.On("GetInstallment", mock.Anything, "user1", "inst1").Return(&models.Installment{
			ID:              "inst1",
			AccountID:       "acct2",
			Amount:          decimal.RequireFromString("100"),
			RemainingAmount: decimal.RequireFromString("100"),
			Status:          models.InstallmentPending,
		}, nil)
		st.On("ListTransactions", mock.Anything, store.TransactionFilter{UserID: "user1", AccountID: "acct2"}).
			Return([]models.Transaction{}, nil)
		// Overpayment settles the installment; the excess is discarded.
		st.On("CreateTransaction", mock.Anything, mock.Anything,
			decimal.RequireFromString("1350"), mock.MatchedBy(func(inst *models.Installment) bool {
				return inst != nil && inst.Status == models.InstallmentPaid && inst.RemainingAmount.IsZero()
			})).
			Return(&models.Transaction{ID: "tx1", Type: models.TypePayment}, nil)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct2","category_id":"cat1","type":"payment","amount":"150","date":"2025-03-10","installment_id":"inst1"}`, nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		st.AssertExpectations(t)

		var resp map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp, "installment")
	})

	t.Run("installment target requires a payment transaction", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetAccount", mock.Anything, "user1", "acct2").Return(payableAccount(), nil)
		st.On("GetCategory", mock.Anything, "user1", "cat1").Return(&models.Category{ID: "cat1"}, nil)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct2","category_id":"cat1","type":"credit","amount":"50","date":"2025-03-10","installment_id":"inst1"}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		st.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("installment from another account rejected", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetAccount", mock.Anything, "user1", "acct2").Return(payableAccount(), nil)
		st.On("GetCategory", mock.Anything, "user1", "cat1").Return(&models.Category{ID: "cat1"}, nil)
		st.On("GetInstallment", mock.Anything, "user1", "inst9").Return(&models.Installment{
			ID:        "inst9",
			AccountID: "other-account",
			Status:    models.InstallmentPending,
		}, nil)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct2","category_id":"cat1","type":"payment","amount":"50","date":"2025-03-10","installment_id":"inst9"}`, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		st.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct1","category_id":"cat1","type":"expense","amount":"-5","date":"2025-03-10"}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		st.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetAccount", mock.Anything, "user1", "acct1").Return(savingsAccount(), nil)
		st.On("GetCategory", mock.Anything, "user1", "missing").Return(nil, store.ErrCategoryNotFound)

		w := httptest.NewRecorder()
		service.CreateTransaction(w, authedRequest(t, "POST", "/api/v1/transactions",
			`{"account_id":"acct1","category_id":"missing","type":"expense","amount":"5","date":"2025-03-10"}`, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("amount edit replays with the edit applied", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		existing := &models.Transaction{
			ID:        "tx1",
			UserID:    "user1",
			AccountID: "acct1",
			Type:      models.TypeExpense,
			Amount:    decimal.RequireFromString("50"),
		}
		st.On("GetTransaction", mock.Anything, "user1", "tx1").Return(existing, nil)
		st.On("GetAccount", mock.Anything, "user1", "acct1").Return(savingsAccount(), nil)
		st.On("ListTransactions", mock.Anything, store.TransactionFilter{UserID: "user1", AccountID: "acct1"}).
			Return([]models.Transaction{*existing}, nil)
		st.On("UpdateTransaction", mock.Anything, "user1", "tx1", mock.Anything,
			decimal.RequireFromString("920")).
			Return(existing, nil)

		w := httptest.NewRecorder()
		service.UpdateTransaction(w, authedRequest(t, "PUT", "/api/v1/transactions/tx1",
			`{"amount":"80"}`, map[string]string{"txId": "tx1"}))

		assert.Equal(t, http.StatusOK, w.Code)
		st.AssertExpectations(t)
	})

	t.Run("type edit must stay within the account's valid set", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetTransaction", mock.Anything, "user1", "tx1").Return(&models.Transaction{
			ID: "tx1", UserID: "user1", AccountID: "acct1", Type: models.TypeExpense,
			Amount: decimal.RequireFromString("50"),
		}, nil)
		st.On("GetAccount", mock.Anything, "user1", "acct1").Return(savingsAccount(), nil)

		w := httptest.NewRecorder()
		service.UpdateTransaction(w, authedRequest(t, "PUT", "/api/v1/transactions/tx1",
			`{"type":"payment"}`, map[string]string{"txId": "tx1"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		st.AssertNotCalled(t, "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("delete replays the balance without the transaction", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		existing := &models.Transaction{
			ID:        "tx1",
			UserID:    "user1",
			AccountID: "acct1",
			Type:      models.TypeExpense,
			Amount:    decimal.RequireFromString("50"),
		}
		st.On("GetTransaction", mock.Anything, "user1", "tx1").Return(existing, nil)
		st.On("GetAccount", mock.Anything, "user1", "acct1").Return(savingsAccount(), nil)
		st.On("ListTransactions", mock.Anything, store.TransactionFilter{UserID: "user1", AccountID: "acct1"}).
			Return([]models.Transaction{*existing}, nil)
		st.On("DeleteTransaction", mock.Anything, "user1", "tx1",
			decimal.RequireFromString("1000")).Return(nil)

		w := httptest.NewRecorder()
		service.DeleteTransaction(w, authedRequest(t, "DELETE", "/api/v1/transactions/tx1", "",
			map[string]string{"txId": "tx1"}))

		assert.Equal(t, http.StatusOK, w.Code)
		st.AssertExpectations(t)

		var resp map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp, "deleted")
		assert.Contains(t, resp, "account")
	})

	t.Run("not found", func(t *testing.T) {
		st := new(MockStore)
		service := NewTransactionService(st)

		st.On("GetTransaction", mock.Anything, "user1", "missing").Return(nil, store.ErrTransactionNotFound)

		w := httptest.NewRecorder()
		service.DeleteTransaction(w, authedRequest(t, "DELETE", "/api/v1/transactions/missing", "",
			map[string]string{"txId": "missing"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
