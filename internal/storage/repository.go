// Package storage implements the ledger store on SQLite. Every mutation
// pairs its record write with the owner's balance update inside a single
// database transaction, so the running balances cannot drift from the
// transaction history.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser provisions the single user profile with zero balances.
func (r *SQLiteRepository) CreateUser(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.ErrEmptyName
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT id FROM users LIMIT 1").Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		rollback(tx)
		return "", fmt.Errorf("check existing user: %w", err)
	}
	if err == nil {
		rollback(tx)
		return "", core.ErrUserExists
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, name, cash_balance_cents, online_balance_cents, created_at) VALUES (?, ?, 0, 0, ?)",
		id, name, time.Now().UTC().UnixNano())
	if err != nil {
		rollback(tx)
		return "", fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		rollback(tx)
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "User profile created", "id", id, "name", name)
	return id, nil
}

// CurrentUser returns the user profile, or nil when none exists.
func (r *SQLiteRepository) CurrentUser(ctx context.Context) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, cash_balance_cents, online_balance_cents FROM users LIMIT 1")

	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.CashBalance.Cents, &u.OnlineBalance.Cents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	return &u, nil
}

// AddTransaction validates the record, then inserts it and applies its
// balance delta in one database transaction.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, ownerID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	if err := ownerExists(ctx, tx, ownerID); err != nil {
		rollback(tx)
		return "", err
	}

	t.ID = uuid.NewString()
	t.OwnerID = ownerID
	t.CreatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, date, mode, application, amount_cents, type, category, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, strings.TrimSpace(t.Date), string(t.Mode), strings.TrimSpace(t.Application),
		t.Amount.Cents, string(t.Type), t.Category, t.Description, t.CreatedAt.UnixNano())
	if err != nil {
		rollback(tx)
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	if err := applyDelta(ctx, tx, ownerID, t.Mode, t.Delta()); err != nil {
		rollback(tx)
		return "", err
	}

	if err := tx.Commit(); err != nil {
		rollback(tx)
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", t.ID,
		"mode", t.Mode,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)
	return t.ID, nil
}

// DeleteTransaction reads the record, reverses its delta and removes it,
// all inside one database transaction. The record is read before removal:
// reversal needs the original amount, mode and type.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}

	if err := ownerExists(ctx, tx, ownerID); err != nil {
		rollback(tx)
		return core.Transaction{}, err
	}

	var (
		t         core.Transaction
		mode, typ string
		createdNs int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, owner_id, date, mode, application, amount_cents, type, category, description, created_at
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.OwnerID, &t.Date, &mode, &t.Application,
			&t.Amount.Cents, &typ, &t.Category, &t.Description, &createdNs)
	if err != nil {
		rollback(tx)
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrTransactionNotFound
		}
		return core.Transaction{}, fmt.Errorf("fetch transaction: %w", err)
	}
	t.Mode = core.Mode(mode)
	t.Type = core.TxType(typ)
	t.CreatedAt = time.Unix(0, createdNs).UTC()

	if t.OwnerID != ownerID {
		rollback(tx)
		slog.WarnContext(ctx, "Delete rejected for foreign transaction",
			"id", id, "owner_id", t.OwnerID, "caller_id", ownerID)
		return core.Transaction{}, core.ErrNotOwner
	}

	if err := applyDelta(ctx, tx, ownerID, t.Mode, -t.Delta()); err != nil {
		rollback(tx)
		return core.Transaction{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		rollback(tx)
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		rollback(tx)
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return t, nil
}

// ClearTransactions removes all of the owner's transactions and resets
// both balances to zero in one database transaction.
func (r *SQLiteRepository) ClearTransactions(ctx context.Context, ownerID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	if err := ownerExists(ctx, tx, ownerID); err != nil {
		rollback(tx)
		return 0, err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE owner_id = ?", ownerID)
	if err != nil {
		rollback(tx)
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		rollback(tx)
		return 0, fmt.Errorf("count cleared transactions: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET cash_balance_cents = 0, online_balance_cents = 0 WHERE id = ?", ownerID)
	if err != nil {
		rollback(tx)
		return 0, fmt.Errorf("reset balances: %w", err)
	}

	if err := tx.Commit(); err != nil {
		rollback(tx)
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions cleared", "owner_id", ownerID, "removed", removed)
	return int(removed), nil
}

// ListTransactions returns the owner's transactions newest-first by
// creation time.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, date, mode, application, amount_cents, type, category, description, created_at
		 FROM transactions WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t         core.Transaction
			mode, typ string
			createdNs int64
		)
		err := rows.Scan(&t.ID, &t.OwnerID, &t.Date, &mode, &t.Application,
			&t.Amount.Cents, &typ, &t.Category, &t.Description, &createdNs)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Mode = core.Mode(mode)
		t.Type = core.TxType(typ)
		t.CreatedAt = time.Unix(0, createdNs).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}

// Summary folds the owner's transactions into the financial summary.
// Balances come from the users row, never recomputed. Returns nil when no
// user profile exists.
func (r *SQLiteRepository) Summary(ctx context.Context, ownerID string) (*core.Summary, error) {
	user, err := r.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID != ownerID {
		return nil, nil
	}

	transactions, err := r.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := core.BuildSummary(*user, transactions)
	return &summary, nil
}

// ownerExists verifies the owning user row inside the current transaction.
func ownerExists(ctx context.Context, tx *sql.Tx, ownerID string) error {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ?", ownerID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNoUser
		}
		return fmt.Errorf("fetch owner: %w", err)
	}
	return nil
}

// applyDelta shifts the owner's balance for the given mode by delta cents.
// Callers pass +Delta() on insert and -Delta() on delete; there is no
// other write path to the balance columns.
func applyDelta(ctx context.Context, tx *sql.Tx, ownerID string, mode core.Mode, delta int64) error {
	column := "online_balance_cents"
	if mode == core.Cash {
		column = "cash_balance_cents"
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET "+column+" = "+column+" + ? WHERE id = ?", delta, ownerID)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("error rolling back transaction", "error", err)
	}
}
