// Package memory provides an in-process ledger.Store. A single mutex is
// the transaction boundary: every paired record-mutation + balance-update
// runs inside one critical section, so readers never observe a
// half-applied mutation.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

type Store struct {
	mu    sync.Mutex
	user  *core.User
	items []core.Transaction // insertion order
}

func New() *Store {
	return &Store{}
}

func (s *Store) CreateUser(_ context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return "", core.ErrUserExists
	}
	s.user = &core.User{
		ID:   uuid.NewString(),
		Name: name,
	}
	return s.user.ID, nil
}

func (s *Store) CurrentUser(_ context.Context) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

// AddTransaction inserts the record and applies its balance delta under
// one lock acquisition.
func (s *Store) AddTransaction(_ context.Context, ownerID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != ownerID {
		return "", core.ErrNoUser
	}

	t.ID = uuid.NewString()
	t.OwnerID = ownerID
	t.CreatedAt = time.Now().UTC()
	s.items = append(s.items, t)

	s.applyDelta(t.Mode, t.Delta())
	return t.ID, nil
}

// DeleteTransaction reverses the record's delta, then removes it, still
// inside the same critical section.
func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != ownerID {
		return core.Transaction{}, core.ErrNoUser
	}

	idx := -1
	for i, t := range s.items {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	t := s.items[idx]
	if t.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotOwner
	}

	s.applyDelta(t.Mode, -t.Delta())
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return t, nil
}

func (s *Store) ClearTransactions(_ context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != ownerID {
		return 0, core.ErrNoUser
	}

	removed := 0
	kept := s.items[:0]
	for _, t := range s.items {
		if t.OwnerID == ownerID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.items = kept

	// Fast path equivalent to reversing every transaction one by one.
	s.user.CashBalance = core.Money{}
	s.user.OnlineBalance = core.Money{}
	return removed, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].OwnerID == ownerID {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func (s *Store) Summary(ctx context.Context, ownerID string) (*core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != ownerID {
		return nil, nil
	}

	var owned []core.Transaction
	for _, t := range s.items {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	summary := core.BuildSummary(*s.user, owned)
	return &summary, nil
}

// applyDelta must be called with the mutex held.
func (s *Store) applyDelta(mode core.Mode, delta int64) {
	if mode == core.Cash {
		s.user.CashBalance.Cents += delta
	} else {
		s.user.OnlineBalance.Cents += delta
	}
}
