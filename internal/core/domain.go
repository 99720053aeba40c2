package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Cash   Mode = "cash"
	Online Mode = "online"

	Income  TxType = "income"
	Expense TxType = "expense"
)

// DateLayout is the wire format for transaction dates.
const DateLayout = "2006-01-02"

type (
	// Mode is the payment channel of a transaction.
	Mode string

	// TxType distinguishes money coming in from money going out.
	TxType string

	Money struct {
		Cents int64
	}

	// Transaction is a single immutable income or expense record.
	Transaction struct {
		ID          string
		OwnerID     string
		Date        string // ISO-8601 calendar date, caller supplied
		Mode        Mode
		Application string
		Amount      Money // always positive; sign comes from Type
		Type        TxType
		Category    string
		Description string
		CreatedAt   time.Time // assigned by the store, insertion order key
	}

	// User carries the denormalized running balances. They are a cache of
	// the signed sum over surviving transactions and must be updated in the
	// same atomic unit as every transaction mutation.
	User struct {
		ID            string
		Name          string
		CashBalance   Money
		OnlineBalance Money
	}
)

var (
	ErrNoUser              = errors.New("user profile not found")
	ErrUserExists          = errors.New("a user profile already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotOwner            = errors.New("unauthorized to delete this transaction")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyApplication = errors.New("empty application")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDate        = errors.New("empty date")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrApplicationLong  = errors.New("application too long (max 200 characters)")
)

func (m Mode) IsValid() bool {
	switch m {
	case Cash, Online:
		return true
	default:
		return false
	}
}

func (t TxType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Delta is the signed balance change a transaction contributes: positive
// for income, negative for expense. Apply adds it, Reverse subtracts the
// same value; there is no second formula anywhere.
func (t Transaction) Delta() int64 {
	if t.Type == Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (t Transaction) Validate() error {
	date := strings.TrimSpace(t.Date)
	if date == "" {
		return ErrEmptyDate
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	if !t.Mode.IsValid() {
		return ErrInvalidMode
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(t.Application)) == 0 {
		return ErrEmptyApplication
	}
	if len(t.Application) > 200 {
		return ErrApplicationLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// IsValidationErr reports whether err belongs to the validation family,
// as opposed to not-found/conflict/ownership failures.
func IsValidationErr(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidAmount,
		ErrEmptyApplication,
		ErrEmptyName,
		ErrEmptyDate,
		ErrInvalidDate,
		ErrInvalidMode,
		ErrInvalidType,
		ErrApplicationLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
