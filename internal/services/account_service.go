package services

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/ledger"
	"github.com/cuentaclara/backend/internal/models"
	"github.com/cuentaclara/backend/internal/store"
)

// AccountService exposes the account CRUD surface. Every mutation returns
// the stored row so callers refresh their own views; there is no ambient
// cache to invalidate.
type AccountService struct {
	store     store.Store
	validator *ValidationHelper
}

func NewAccountService(st store.Store) *AccountService {
	return &AccountService{
		store:     st,
		validator: NewValidationHelper(),
	}
}

type createAccountRequest struct {
	Name              string           `json:"name" validate:"required,max=100"`
	Type              string           `json:"type" validate:"required,oneof=checking savings credit debit cash"`
	InitialBalance    decimal.Decimal  `json:"initial_balance"`
	CreditLimit       *decimal.Decimal `json:"credit_limit,omitempty"`
	PaymentType       string           `json:"payment_type,omitempty" validate:"omitempty,oneof=receivable payable"`
	HasInstallments   bool             `json:"has_installments"`
	TotalInstallments *int             `json:"total_installments,omitempty"`
}

type updateAccountRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	Type        *string          `json:"type,omitempty" validate:"omitempty,oneof=checking savings credit debit cash"`
	PaymentType *string          `json:"payment_type,omitempty" validate:"omitempty,oneof=receivable payable"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// ListAccounts returns the user's accounts, active ones by default.
func (as *AccountService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	accounts, err := as.store.ListAccounts(r.Context(), userID, includeInactive)
	if err != nil {
		log.Printf("[ACCOUNT] Failed to list accounts: %v", err)
		SendErrorResponse(w, "Failed to fetch accounts", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// GetAccount returns a single account with its cached calculated balance.
func (as *AccountService) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := as.store.GetAccount(r.Context(), userID, chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	SendJSON(w, http.StatusOK, account)
}

// CreateAccount creates an account and, when a structured payment plan is
// requested, its full installment schedule in one atomic batch. Balance
// starts at the initial balance (zero transactions).
func (as *AccountService) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req createAccountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	kind := models.AccountKind(req.Type)
	account := models.Account{
		UserID:           userID,
		Name:             req.Name,
		Kind:             kind,
		IsCurrentAccount: kind == models.KindChecking,
		InitialBalance:   req.InitialBalance,
		Balance:          req.InitialBalance,
		HasInstallments:  req.HasInstallments,
		IsActive:         true,
	}

	if account.IsCurrentAccount {
		if req.PaymentType == "" {
			SendErrorResponse(w, "payment_type is required for checking accounts", http.StatusBadRequest, nil)
			return
		}
		pt := models.PaymentType(req.PaymentType)
		account.PaymentType = &pt
	}
	if kind == models.KindCredit && req.CreditLimit != nil {
		account.CreditLimit = req.CreditLimit
	}
	if req.HasInstallments {
		account.TotalInstallments = req.TotalInstallments
	}

	// Plan generation is validated before anything is persisted.
	plan, err := ledger.BuildPlan(account, time.Now().UTC())
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	created, err := as.store.CreateAccount(r.Context(), &account, plan)
	if err != nil {
		log.Printf("[ACCOUNT] Failed to create account: %v", err)
		SendErrorResponse(w, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusCreated, map[string]any{
		"account":      created,
		"installments": plan,
	})
}

// UpdateAccount applies a partial edit. A change to the account's kind or
// polarity reinterprets the full transaction history: the balance is
// recomputed by replay under the new rules before anything is stored.
func (as *AccountService) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	accountID := chi.URLParam(r, "accountId")

	var req updateAccountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := as.store.GetAccount(r.Context(), userID, accountID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	upd := store.AccountUpdate{
		Name:        req.Name,
		CreditLimit: req.CreditLimit,
		IsActive:    req.IsActive,
	}

	// Apply the edit to an in-memory copy so the balance replay runs under
	// the configuration being stored, not the old one.
	next := *account
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.Type != nil {
		kind := models.AccountKind(*req.Type)
		next.Kind = kind
		next.IsCurrentAccount = kind == models.KindChecking
		upd.Kind = &kind
		upd.IsCurrentAccount = &next.IsCurrentAccount
		if !next.IsCurrentAccount {
			next.PaymentType = nil
			upd.ClearPaymentType = true
		}
	}
	if req.PaymentType != nil {
		if !next.IsCurrentAccount {
			SendErrorResponse(w, "payment_type only applies to checking accounts", http.StatusBadRequest, nil)
			return
		}
		pt := models.PaymentType(*req.PaymentType)
		next.PaymentType = &pt
		upd.PaymentType = &pt
		upd.ClearPaymentType = false
	}
	if next.IsCurrentAccount && next.PaymentType == nil {
		SendErrorResponse(w, "payment_type is required for checking accounts", http.StatusBadRequest, nil)
		return
	}

	txs, err := as.store.ListTransactions(r.Context(), store.TransactionFilter{
		UserID:    userID,
		AccountID: accountID,
	})
	if err != nil {
		log.Printf("[ACCOUNT] Failed to list transactions for replay: %v", err)
		SendErrorResponse(w, "Failed to update account", http.StatusInternalServerError, nil)
		return
	}

	balance, warnings := ledger.ComputeBalance(next, txs)
	for _, warn := range warnings {
		log.Printf("[BALANCE] Data consistency warning: %s", warn)
	}
	upd.Balance = &balance

	updated, err := as.store.UpdateAccount(r.Context(), userID, accountID, upd)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	SendJSON(w, http.StatusOK, updated)
}

// DeleteAccount removes the account and all of its transactions and
// installments. Dependent deletion failures leave the account intact.
func (as *AccountService) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	accountID := chi.URLParam(r, "accountId")
	if err := as.store.DeleteAccount(r.Context(), userID, accountID); err != nil {
		log.Printf("[ACCOUNT] Failed to delete account %s: %v", accountID, err)
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{"deleted": accountID})
}

// ListInstallments returns an account's non-paid installments in
// installment_number order, for selection as payment targets. Paid
// installments are never offered.
func (as *AccountService) ListInstallments(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	accountID := chi.URLParam(r, "accountId")

	if _, err := as.store.GetAccount(r.Context(), userID, accountID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	statuses := []models.InstallmentStatus{models.InstallmentPending, models.InstallmentPartial}
	if r.URL.Query().Get("all") == "true" {
		statuses = nil
	}

	installments, err := as.store.ListInstallments(r.Context(), userID, accountID, statuses)
	if err != nil {
		log.Printf("[ACCOUNT] Failed to list installments: %v", err)
		SendErrorResponse(w, "Failed to fetch installments", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"installments": installments,
		"count":        len(installments),
	})
}
