package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"github.com/cuentaclara/backend/internal/ledger"
	"github.com/cuentaclara/backend/internal/models"
	"github.com/cuentaclara/backend/internal/store"
)

const reportCacheTTL = 60 * time.Second

// ReportService builds the dashboard aggregates. All sign decisions go
// through the ledger resolver, so the dashboard, the account list and the
// balance cache can never disagree about a transaction's direction.
// Reports are cached in Redis with a short TTL; a missing or failing cache
// just means recomputation.
type ReportService struct {
	store store.Store
	redis *redis.Client
}

func NewReportService(st store.Store, rdb *redis.Client) *ReportService {
	return &ReportService{
		store: st,
		redis: rdb,
	}
}

// MonthlyFlow is the net signed flow of one calendar month.
type MonthlyFlow struct {
	Month string          `json:"month"`
	Net   decimal.Decimal `json:"net"`
}

// AccountSummary is one dashboard account card.
type AccountSummary struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Kind              models.AccountKind `json:"type"`
	InitialBalance    decimal.Decimal    `json:"initial_balance"`
	CalculatedBalance decimal.Decimal    `json:"calculated_balance"`
}

// MonthlyReport returns the user's net flow per month across all accounts.
func (rs *ReportService) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	cacheKey := "reports:monthly:" + userID
	if cached := rs.fromCache(r.Context(), cacheKey); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	accounts, err := rs.store.ListAccounts(r.Context(), userID, true)
	if err != nil {
		log.Printf("[REPORT] Failed to list accounts: %v", err)
		SendErrorResponse(w, "Failed to build report", http.StatusInternalServerError, nil)
		return
	}
	byID := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	transactions, err := rs.store.ListTransactions(r.Context(), store.TransactionFilter{UserID: userID})
	if err != nil {
		log.Printf("[REPORT] Failed to list transactions: %v", err)
		SendErrorResponse(w, "Failed to build report", http.StatusInternalServerError, nil)
		return
	}

	months := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		account, ok := byID[tx.AccountID]
		if !ok {
			log.Printf("[REPORT] Transaction %s references unknown account %s; skipped", tx.ID, tx.AccountID)
			continue
		}
		sign, err := ledger.Sign(account, tx.Type)
		if err != nil {
			log.Printf("[BALANCE] Data consistency warning: %s", ledger.Warning{TransactionID: tx.ID, Type: tx.Type})
			continue
		}
		key := tx.Date.Format("2006-01")
		if sign > 0 {
			months[key] = months[key].Add(tx.Amount)
		} else {
			months[key] = months[key].Sub(tx.Amount)
		}
	}

	flows := make([]MonthlyFlow, 0, len(months))
	for month, net := range months {
		flows = append(flows, MonthlyFlow{Month: month, Net: net})
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Month < flows[j].Month })

	rs.respondAndCache(r.Context(), w, cacheKey, map[string]any{"months": flows})
}

// AccountsReport returns the dashboard account cards with a grand total of
// the calculated balances of active accounts.
func (rs *ReportService) AccountsReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	cacheKey := "reports:accounts:" + userID
	if cached := rs.fromCache(r.Context(), cacheKey); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	accounts, err := rs.store.ListAccounts(r.Context(), userID, false)
	if err != nil {
		log.Printf("[REPORT] Failed to list accounts: %v", err)
		SendErrorResponse(w, "Failed to build report", http.StatusInternalServerError, nil)
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	total := decimal.Zero
	for _, a := range accounts {
		summaries = append(summaries, AccountSummary{
			ID:                a.ID,
			Name:              a.Name,
			Kind:              a.Kind,
			InitialBalance:    a.InitialBalance,
			CalculatedBalance: a.Balance,
		})
		total = total.Add(a.Balance)
	}

	rs.respondAndCache(r.Context(), w, cacheKey, map[string]any{
		"accounts": summaries,
		"total":    total,
	})
}

func (rs *ReportService) fromCache(ctx context.Context, key string) []byte {
	if rs.redis == nil {
		return nil
	}
	cached, err := rs.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[REPORT] Cache read failed for %s: %v", key, err)
		}
		return nil
	}
	return cached
}

func (rs *ReportService) respondAndCache(ctx context.Context, w http.ResponseWriter, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		SendErrorResponse(w, "Failed to build report", http.StatusInternalServerError, nil)
		return
	}

	if rs.redis != nil {
		if err := rs.redis.Set(ctx, key, body, reportCacheTTL).Err(); err != nil {
			log.Printf("[REPORT] Cache write failed for %s: %v", key, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
