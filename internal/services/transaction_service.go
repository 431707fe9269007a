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

const dateLayout = "2006-01-02"

// TransactionService posts, edits and deletes transactions. Every mutation
// recomputes the owning account's balance by replaying the full transaction
// set through the ledger rules; the store persists the row change and the
// new balance as one unit of work.
type TransactionService struct {
	store     store.Store
	validator *ValidationHelper
}

func NewTransactionService(st store.Store) *TransactionService {
	return &TransactionService{
		store:     st,
		validator: NewValidationHelper(),
	}
}

type createTransactionRequest struct {
	AccountID     string          `json:"account_id" validate:"required"`
	CategoryID    string          `json:"category_id" validate:"required"`
	Type          string          `json:"type" validate:"required,oneof=income expense payment credit"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty" validate:"max=200"`
	Date          string          `json:"date" validate:"required"`
	InstallmentID string          `json:"installment_id,omitempty"`
}

type updateTransactionRequest struct {
	CategoryID  *string          `json:"category_id,omitempty"`
	Type        *string          `json:"type,omitempty" validate:"omitempty,oneof=income expense payment credit"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=200"`
	Date        *string          `json:"date,omitempty"`
}

// ListTransactions returns the user's transactions with optional filters.
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	filter := store.TransactionFilter{
		UserID:     userID,
		AccountID:  r.URL.Query().Get("accountId"),
		CategoryID: r.URL.Query().Get("categoryId"),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		tt := models.TransactionType(t)
		if !tt.IsValid() {
			SendErrorResponse(w, "Invalid transaction type filter", http.StatusBadRequest, nil)
			return
		}
		filter.Type = tt
	}
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := time.Parse(dateLayout, from)
		if err != nil {
			SendErrorResponse(w, "Invalid from date", http.StatusBadRequest, nil)
			return
		}
		filter.From = d
	}
	if to := r.URL.Query().Get("to"); to != "" {
		d, err := time.Parse(dateLayout, to)
		if err != nil {
			SendErrorResponse(w, "Invalid to date", http.StatusBadRequest, nil)
			return
		}
		filter.To = d
	}

	transactions, err := ts.store.ListTransactions(r.Context(), filter)
	if err != nil {
		log.Printf("[TRANSACTION] Failed to list transactions: %v", err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// GetTransaction retrieves a single transaction.
func (ts *TransactionService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	tx, err := ts.store.GetTransaction(r.Context(), userID, chi.URLParam(r, "txId"))
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	SendJSON(w, http.StatusOK, tx)
}

// CreateTransaction validates the transaction against the target account's
// configuration, advances the targeted installment when the payment settles
// part of a plan, replays the account's balance with the new transaction
// included, and persists the whole unit atomically. The response carries the
// created transaction and the updated account.
func (ts *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req createTransactionRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}
	if !req.Amount.IsPositive() {
		SendErrorResponse(w, "Amount must be positive", http.StatusBadRequest, nil)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		SendErrorResponse(w, "Invalid date", http.StatusBadRequest, nil)
		return
	}

	account, err := ts.store.GetAccount(r.Context(), userID, req.AccountID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	if _, err := ts.store.GetCategory(r.Context(), userID, req.CategoryID); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	txType := models.TransactionType(req.Type)
	if !ledger.TypeAllowed(*account, txType) {
		SendErrorResponse(w, ledger.ErrInvalidTransactionType.Error(), http.StatusBadRequest, nil)
		return
	}

	tx := models.Transaction{
		UserID:      userID,
		AccountID:   account.ID,
		CategoryID:  req.CategoryID,
		Type:        txType,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}

	var updatedInst *models.Installment
	if req.InstallmentID != "" {
		if txType != models.TypePayment {
			SendErrorResponse(w, "Only payment transactions may target an installment", http.StatusBadRequest, nil)
			return
		}
		inst, err := ts.store.GetInstallment(r.Context(), userID, req.InstallmentID)
		if err != nil {
			SendErrorResponse(w, err.Error(), statusForError(err), nil)
			return
		}
		if inst.AccountID != account.ID {
			SendErrorResponse(w, store.ErrInstallmentNotFound.Error(), http.StatusNotFound, nil)
			return
		}
		next, err := ledger.ApplyPayment(*inst, req.Amount)
		if err != nil {
			SendErrorResponse(w, err.Error(), statusForError(err), nil)
			return
		}
		updatedInst = &next
		tx.InstallmentID = &inst.ID
	}

	existing, err := ts.store.ListTransactions(r.Context(), store.TransactionFilter{
		UserID:    userID,
		AccountID: account.ID,
	})
	if err != nil {
		log.Printf("[TRANSACTION] Failed to list transactions for replay: %v", err)
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
		return
	}

	balance, warnings := ledger.ComputeBalance(*account, append(existing, tx))
	for _, warn := range warnings {
		log.Printf("[BALANCE] Data consistency warning: %s", warn)
	}

	created, err := ts.store.CreateTransaction(r.Context(), &tx, balance, updatedInst)
	if err != nil {
		log.Printf("[TRANSACTION] Failed to create transaction: %v", err)
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	account.Balance = balance
	resp := map[string]any{
		"transaction": created,
		"account":     account,
	}
	if updatedInst != nil {
		resp["installment"] = updatedInst
	}
	SendJSON(w, http.StatusCreated, resp)
}

// UpdateTransaction edits a transaction and replays the owning account's
// balance with the edit applied.
func (ts *TransactionService) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	txID := chi.URLParam(r, "txId")

	var req updateTransactionRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	existing, err := ts.store.GetTransaction(r.Context(), userID, txID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	account, err := ts.store.GetAccount(r.Context(), userID, existing.AccountID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	upd := store.TransactionUpdate{
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}

	next := *existing
	if req.CategoryID != nil {
		if _, err := ts.store.GetCategory(r.Context(), userID, *req.CategoryID); err != nil {
			SendErrorResponse(w, err.Error(), statusForError(err), nil)
			return
		}
		next.CategoryID = *req.CategoryID
	}
	if req.Type != nil {
		tt := models.TransactionType(*req.Type)
		if !ledger.TypeAllowed(*account, tt) {
			SendErrorResponse(w, ledger.ErrInvalidTransactionType.Error(), http.StatusBadRequest, nil)
			return
		}
		next.Type = tt
		upd.Type = &tt
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			SendErrorResponse(w, "Amount must be positive", http.StatusBadRequest, nil)
			return
		}
		next.Amount = *req.Amount
		upd.Amount = req.Amount
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Date != nil {
		d, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			SendErrorResponse(w, "Invalid date", http.StatusBadRequest, nil)
			return
		}
		next.Date = d
		upd.Date = &d
	}

	all, err := ts.store.ListTransactions(r.Context(), store.TransactionFilter{
		UserID:    userID,
		AccountID: account.ID,
	})
	if err != nil {
		log.Printf("[TRANSACTION] Failed to list transactions for replay: %v", err)
		SendErrorResponse(w, "Failed to update transaction", http.StatusInternalServerError, nil)
		return
	}
	for i := range all {
		if all[i].ID == txID {
			all[i] = next
		}
	}

	balance, warnings := ledger.ComputeBalance(*account, all)
	for _, warn := range warnings {
		log.Printf("[BALANCE] Data consistency warning: %s", warn)
	}

	updated, err := ts.store.UpdateTransaction(r.Context(), userID, txID, upd, balance)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	account.Balance = balance
	SendJSON(w, http.StatusOK, map[string]any{
		"transaction": updated,
		"account":     account,
	})
}

// DeleteTransaction removes a transaction and replays the owning account's
// balance without it.
func (ts *TransactionService) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	txID := chi.URLParam(r, "txId")

	existing, err := ts.store.GetTransaction(r.Context(), userID, txID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}
	account, err := ts.store.GetAccount(r.Context(), userID, existing.AccountID)
	if err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	all, err := ts.store.ListTransactions(r.Context(), store.TransactionFilter{
		UserID:    userID,
		AccountID: account.ID,
	})
	if err != nil {
		log.Printf("[TRANSACTION] Failed to list transactions for replay: %v", err)
		SendErrorResponse(w, "Failed to delete transaction", http.StatusInternalServerError, nil)
		return
	}
	remaining := all[:0]
	for _, t := range all {
		if t.ID != txID {
			remaining = append(remaining, t)
		}
	}

	balance, warnings := ledger.ComputeBalance(*account, remaining)
	for _, warn := range warnings {
		log.Printf("[BALANCE] Data consistency warning: %s", warn)
	}

	if err := ts.store.DeleteTransaction(r.Context(), userID, txID, balance); err != nil {
		SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	account.Balance = balance
	SendJSON(w, http.StatusOK, map[string]any{
		"deleted": txID,
		"account": account,
	})
}
