package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	CashBalanceCents   int64  `json:"cashBalanceCents"`
	OnlineBalanceCents int64  `json:"onlineBalanceCents"`
	CashBalance        string `json:"cashBalance"`
	OnlineBalance      string `json:"onlineBalance"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Mode        string `json:"mode"`
	Application string `json:"application"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

type summaryResponse struct {
	TotalAmountCents   int64 `json:"totalAmountCents"`
	TotalCashCents     int64 `json:"totalCashCents"`
	TotalOnlineCents   int64 `json:"totalOnlineCents"`
	AmountSpentCents   int64 `json:"amountSpentCents"`
	CashSpentCents     int64 `json:"cashSpentCents"`
	OnlineSpentCents   int64 `json:"onlineSpentCents"`
	AmountLeftCents    int64 `json:"amountLeftCents"`
	CashLeftCents      int64 `json:"cashLeftCents"`
	OnlineLeftCents    int64 `json:"onlineLeftCents"`
	OnlineMoneyInCents int64 `json:"onlineMoneyInCents"`
}

type categoryRow struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amountCents"`
}

type monthFlowRow struct {
	Month        string `json:"month"`
	IncomeCents  int64  `json:"incomeCents"`
	ExpenseCents int64  `json:"expenseCents"`
}

type modeTotalsRow struct {
	CashCents   int64 `json:"cashCents"`
	OnlineCents int64 `json:"onlineCents"`
}

type reportsResponse struct {
	SpendingByCategory []categoryRow  `json:"spendingByCategory"`
	MonthlyFlow        []monthFlowRow `json:"monthlyFlow"`
	VolumeByMode       modeTotalsRow  `json:"volumeByMode"`
}

func toUserResponse(u *core.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Name:               u.Name,
		CashBalanceCents:   u.CashBalance.Cents,
		OnlineBalanceCents: u.OnlineBalance.Cents,
		CashBalance:        formatCents(u.CashBalance.Cents),
		OnlineBalance:      formatCents(u.OnlineBalance.Cents),
	}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Date:        t.Date,
		Mode:        string(t.Mode),
		Application: t.Application,
		AmountCents: t.Amount.Cents,
		Amount:      formatCents(t.Amount.Cents),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTransactionListResponse(items []core.Transaction) transactionListResponse {
	resp := transactionListResponse{
		Transactions: make([]transactionResponse, 0, len(items)),
		Count:        len(items),
	}
	for _, t := range items {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	return resp
}

func toSummaryResponse(s *core.Summary) summaryResponse {
	return summaryResponse{
		TotalAmountCents:   s.TotalAmount.Cents,
		TotalCashCents:     s.TotalCash.Cents,
		TotalOnlineCents:   s.TotalOnline.Cents,
		AmountSpentCents:   s.AmountSpent.Cents,
		CashSpentCents:     s.CashSpent.Cents,
		OnlineSpentCents:   s.OnlineSpent.Cents,
		AmountLeftCents:    s.AmountLeft.Cents,
		CashLeftCents:      s.CashLeft.Cents,
		OnlineLeftCents:    s.OnlineLeft.Cents,
		OnlineMoneyInCents: s.OnlineMoneyIn.Cents,
	}
}

func toReportsResponse(byCategory []core.CategoryAmount, flow []core.MonthFlow, modes core.ModeTotals) reportsResponse {
	resp := reportsResponse{
		SpendingByCategory: make([]categoryRow, 0, len(byCategory)),
		MonthlyFlow:        make([]monthFlowRow, 0, len(flow)),
		VolumeByMode: modeTotalsRow{
			CashCents:   modes.Cash.Cents,
			OnlineCents: modes.Online.Cents,
		},
	}
	for _, c := range byCategory {
		resp.SpendingByCategory = append(resp.SpendingByCategory, categoryRow{
			Category:    c.Name,
			AmountCents: c.Amount.Cents,
		})
	}
	for _, m := range flow {
		resp.MonthlyFlow = append(resp.MonthlyFlow, monthFlowRow{
			Month:        m.Month,
			IncomeCents:  m.Income.Cents,
			ExpenseCents: m.Expense.Cents,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps ledger sentinels onto HTTP statuses. Unknown
// errors are logged and hidden behind a generic 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidationErr(err):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case isNotFound(err):
		writeError(w, r, http.StatusNotFound, err.Error())
	case isConflict(err):
		writeError(w, r, http.StatusConflict, err.Error())
	case isForbidden(err):
		writeError(w, r, http.StatusForbidden, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Store operation failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
