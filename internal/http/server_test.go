package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
	"github.com/Shreenandbhattad/personal-finance-tracker/internal/ledger"
	"github.com/Shreenandbhattad/personal-finance-tracker/internal/ledger/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(":0", memory.New(), nil, Options{})
	t.Cleanup(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func registerUser(t *testing.T, srv *Server) {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/user", `{"name":"Alice"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create user status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateAndGetUser(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/user", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before registration, got %d", rr.Code)
	}

	registerUser(t, srv)

	rr = doJSON(t, srv, http.MethodGet, "/api/user", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get user status=%d", rr.Code)
	}
	var u userResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.Name != "Alice" || u.CashBalanceCents != 0 || u.OnlineBalanceCents != 0 {
		t.Fatalf("unexpected user: %+v", u)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/user", `{"name":"Bob"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second registration, got %d", rr.Code)
	}
}

func TestCreateUser_BadRequest(t *testing.T) {
	srv := newTestServer(t)

	for name, body := range map[string]string{
		"empty name":    `{"name":"  "}`,
		"not json":      `{{`,
		"unknown field": `{"name":"A","extra":1}`,
	} {
		rr := doJSON(t, srv, http.MethodPost, "/api/user", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rr.Code)
		}
	}
}

func TestAddTransaction(t *testing.T) {
	srv := newTestServer(t)

	body := `{"date":"2026-01-05","mode":"cash","application":"Salary","amount":"1000.00","type":"income"}`
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without user, got %d", rr.Code)
	}

	registerUser(t, srv)

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}
	var tx transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if tx.ID == "" || tx.AmountCents != 100000 || tx.Amount != "1000.00" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	// Numeric amounts work too.
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2026-01-06","mode":"online","application":"Rent","amount":300.5,"type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("numeric amount status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/user", "")
	var u userResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.CashBalanceCents != 100000 || u.OnlineBalanceCents != -30050 {
		t.Fatalf("balances not updated: %+v", u)
	}
}

func TestAddTransaction_Invalid(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv)

	cases := map[string]string{
		"bad amount":     `{"date":"2026-01-05","mode":"cash","application":"x","amount":"abc","type":"income"}`,
		"zero amount":    `{"date":"2026-01-05","mode":"cash","application":"x","amount":"0","type":"income"}`,
		"bad mode":       `{"date":"2026-01-05","mode":"card","application":"x","amount":"1.00","type":"income"}`,
		"bad type":       `{"date":"2026-01-05","mode":"cash","application":"x","amount":"1.00","type":"transfer"}`,
		"bad date":       `{"date":"05/01/2026","mode":"cash","application":"x","amount":"1.00","type":"income"}`,
		"empty app":      `{"date":"2026-01-05","mode":"cash","application":" ","amount":"1.00","type":"income"}`,
		"missing fields": `{"amount":"1.00"}`,
	}
	for name, body := range cases {
		rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d (%s)", name, rr.Code, rr.Body.String())
		}
	}

	// Nothing must have reached the ledger.
	rr := doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	var list transactionListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 0 {
		t.Fatalf("expected empty ledger, got %d transactions", list.Count)
	}
}

func TestListAndReports_NoUser(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list without user status=%d", rr.Code)
	}
	var list transactionListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 0 || len(list.Transactions) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reports without user status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("summary without user status=%d, want 404", rr.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv)

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2026-01-05","mode":"online","application":"Rent","amount":"300.00","type":"expense"}`)
	var tx transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+tx.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	var removed transactionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &removed); err != nil {
		t.Fatalf("decode removed: %v", err)
	}
	if removed.ID != tx.ID || removed.AmountCents != 30000 {
		t.Fatalf("unexpected removed record: %+v", removed)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/user", "")
	var u userResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.OnlineBalanceCents != 0 {
		t.Fatalf("delete did not reverse balance: %+v", u)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+tx.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", rr.Code)
	}
}

func TestClearTransactions(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv)

	for _, body := range []string{
		`{"date":"2026-01-05","mode":"cash","application":"Salary","amount":"1000.00","type":"income"}`,
		`{"date":"2026-01-06","mode":"online","application":"Rent","amount":"300.00","type":"expense"}`,
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodDelete, "/api/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status=%d body=%s", rr.Code, rr.Body.String())
	}
	var cleared clearResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cleared); err != nil {
		t.Fatalf("decode clear: %v", err)
	}
	if cleared.Removed != 2 {
		t.Fatalf("expected 2 removed, got %d", cleared.Removed)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/user", "")
	var u userResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.CashBalanceCents != 0 || u.OnlineBalanceCents != 0 {
		t.Fatalf("clear did not zero balances: %+v", u)
	}
}

func TestSummaryAndCacheInvalidation(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv)

	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2026-01-05","mode":"cash","application":"Salary","amount":"1000.00","type":"income"}`); rr.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", rr.Code)
	}

	// First read populates the cache.
	rr := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var sum summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.TotalAmountCents != 100000 || sum.CashLeftCents != 100000 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	// A mutation must invalidate the cached summary.
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2026-01-06","mode":"cash","application":"Groceries","amount":"100.00","type":"expense"}`); rr.Code != http.StatusCreated {
		t.Fatalf("mutation status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.TotalAmountCents != 90000 || sum.CashSpentCents != 10000 {
		t.Fatalf("summary served stale data: %+v", sum)
	}
}

func TestReports(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv)

	seeds := []string{
		`{"date":"2026-01-05","mode":"cash","application":"Salary","amount":"1000.00","type":"income"}`,
		`{"date":"2026-01-10","mode":"online","application":"Rent","amount":"300.00","type":"expense","category":"housing"}`,
		`{"date":"2026-02-02","mode":"online","application":"Groceries","amount":"50.00","type":"expense","category":"food"}`,
	}
	for _, body := range seeds {
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/reports", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reports status=%d", rr.Code)
	}
	var rep reportsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode reports: %v", err)
	}
	if len(rep.SpendingByCategory) != 2 || rep.SpendingByCategory[0].Category != "housing" {
		t.Fatalf("unexpected category report: %+v", rep.SpendingByCategory)
	}
	if len(rep.MonthlyFlow) != 2 || rep.MonthlyFlow[0].Month != "Jan 26" {
		t.Fatalf("unexpected monthly flow: %+v", rep.MonthlyFlow)
	}
	if rep.VolumeByMode.CashCents != 100000 || rep.VolumeByMode.OnlineCents != 35000 {
		t.Fatalf("unexpected mode volume: %+v", rep.VolumeByMode)
	}
}

func TestListTransactions_NewestFirst(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv)

	apps := []string{"first", "second", "third"}
	for _, app := range apps {
		body := `{"date":"2026-01-05","mode":"cash","application":"` + app + `","amount":"1.00","type":"income"}`
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	var list transactionListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 3 {
		t.Fatalf("expected 3 transactions, got %d", list.Count)
	}
	for i, want := range []string{"third", "second", "first"} {
		if got := list.Transactions[i].Application; got != want {
			t.Fatalf("position %d: got %q, want %q", i, got, want)
		}
	}
}

// failingStore errors on every call, for exercising the 500 path.
type failingStore struct{}

var errBoom = errors.New("boom")

func (failingStore) CreateUser(context.Context, string) (string, error) { return "", errBoom }
func (failingStore) CurrentUser(context.Context) (*core.User, error)    { return nil, errBoom }
func (failingStore) AddTransaction(context.Context, string, core.Transaction) (string, error) {
	return "", errBoom
}
func (failingStore) DeleteTransaction(context.Context, string, string) (core.Transaction, error) {
	return core.Transaction{}, errBoom
}
func (failingStore) ClearTransactions(context.Context, string) (int, error) { return 0, errBoom }
func (failingStore) ListTransactions(context.Context, string) ([]core.Transaction, error) {
	return nil, errBoom
}
func (failingStore) Summary(context.Context, string) (*core.Summary, error) { return nil, errBoom }

var _ ledger.Store = failingStore{}

func TestStoreErrorsMapTo500(t *testing.T) {
	srv := NewServer(":0", failingStore{}, nil, Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr := doJSON(t, srv, http.MethodGet, "/api/user", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var e errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if e.Error != "internal error" {
		t.Fatalf("internal detail leaked: %q", e.Error)
	}
}
