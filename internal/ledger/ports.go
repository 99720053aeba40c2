package ledger

import (
	"context"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

// Ports for outbound adapters. Every operation is keyed by an explicit
// owner id; "whoever the current user is" gets resolved once at the edge.
type (
	UserWriter interface {
		// CreateUser provisions the single user profile with zero balances.
		// Returns core.ErrUserExists if a profile already exists.
		CreateUser(ctx context.Context, name string) (string, error)
	}

	UserReader interface {
		// CurrentUser returns the user profile, or nil when none exists.
		CurrentUser(ctx context.Context) (*core.User, error)
	}

	// TransactionWriter mutates the transaction set. Each mutation updates
	// the owner's running balances in the same atomic unit; no caller ever
	// touches balances directly.
	TransactionWriter interface {
		// AddTransaction validates, assigns id and creation time, inserts
		// the record and applies its balance delta. Returns the new id.
		AddTransaction(ctx context.Context, ownerID string, t core.Transaction) (string, error)

		// DeleteTransaction reverses the record's balance delta and removes
		// it, returning the removed record. Returns
		// core.ErrTransactionNotFound or core.ErrNotOwner.
		DeleteTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)

		// ClearTransactions removes every transaction of the owner and
		// resets both balances to zero. Returns the number removed.
		ClearTransactions(ctx context.Context, ownerID string) (int, error)
	}

	TransactionLister interface {
		// ListTransactions returns the owner's transactions newest-first
		// by creation time.
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
	}

	SummaryReader interface {
		// Summary returns the financial summary for the owner, or nil when
		// no user profile exists.
		Summary(ctx context.Context, ownerID string) (*core.Summary, error)
	}
)

// Store is the full persistence surface the HTTP layer runs against.
type Store interface {
	UserWriter
	UserReader
	TransactionWriter
	TransactionLister
	SummaryReader
}
