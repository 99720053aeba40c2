package http

import (
	"log/slog"
	"net/http"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := parseCreateUserRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.CreateUser(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	user, err := s.store.CurrentUser(r.Context())
	if err != nil || user == nil {
		slog.ErrorContext(r.Context(), "Read back created user failed", "error", err, "id", id)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.CurrentUser(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, http.StatusNotFound, "no user registered")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	t, err := parseTransactionRequest(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.AddTransaction(r.Context(), user.ID, t)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateOwner(user.ID)

	t.ID = id
	t.OwnerID = user.ID
	if s.events != nil {
		if err := s.events.PublishTransactionCreated(r.Context(), t); err != nil {
			slog.WarnContext(r.Context(), "Publish created event failed", "error", err, "id", id)
		}
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.CurrentUser(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if user == nil {
		// No profile yet means an empty ledger, not an error.
		writeJSON(w, http.StatusOK, toTransactionListResponse(nil))
		return
	}

	items, err := s.cachedTransactions(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionListResponse(items))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "transaction id required")
		return
	}

	removed, err := s.store.DeleteTransaction(r.Context(), user.ID, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateOwner(user.ID)

	if s.events != nil {
		if err := s.events.PublishTransactionDeleted(r.Context(), removed); err != nil {
			slog.WarnContext(r.Context(), "Publish deleted event failed", "error", err, "id", id)
		}
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(removed))
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	removed, err := s.store.ClearTransactions(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateOwner(user.ID)

	if s.events != nil {
		if err := s.events.PublishTransactionsCleared(r.Context(), user.ID, removed); err != nil {
			slog.WarnContext(r.Context(), "Publish cleared event failed", "error", err, "owner_id", user.ID)
		}
	}

	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	summary, err := s.cachedSummary(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.CurrentUser(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, toReportsResponse(nil, nil, core.ModeTotals{}))
		return
	}

	items, err := s.cachedTransactions(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportsResponse(
		core.SpendingByCategory(items),
		core.MonthlyFlow(items),
		core.VolumeByMode(items),
	))
}

// requireUser resolves the registered user or answers 404. Every ledger
// endpoint except registration needs an existing user.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*core.User, bool) {
	user, err := s.store.CurrentUser(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return nil, false
	}
	if user == nil {
		writeError(w, r, http.StatusNotFound, "no user registered")
		return nil, false
	}
	return user, true
}
