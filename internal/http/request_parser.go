package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

// maxBodyBytes bounds request bodies; ledger payloads are tiny.
const maxBodyBytes = 1 << 16

type createUserRequest struct {
	Name string `json:"name"`
}

// decimalAmount accepts the amount either as a JSON number or as a
// decimal string, so clients are free to avoid float encoding.
type decimalAmount string

func (d *decimalAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		*d = decimalAmount(unquoted)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("amount must be a number or a decimal string")
	}
	*d = decimalAmount(n.String())
	return nil
}

type transactionRequest struct {
	Date        string        `json:"date"`
	Mode        string        `json:"mode"`
	Application string        `json:"application"`
	Amount      decimalAmount `json:"amount"`
	Type        string        `json:"type"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseCreateUserRequest(r *http.Request) (createUserRequest, error) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return createUserRequest{}, err
	}
	req.Name = sanitizeInput(req.Name)
	if req.Name == "" {
		return createUserRequest{}, errors.New("name is required")
	}
	return req, nil
}

// parseTransactionRequest builds a domain transaction from the request
// body. Field validation beyond amount parsing is left to the store, so
// validation failures map to the same sentinels everywhere.
func parseTransactionRequest(r *http.Request) (core.Transaction, error) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Transaction{}, err
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	return core.Transaction{
		Date:        sanitizeInput(req.Date),
		Mode:        core.Mode(sanitizeInput(req.Mode)),
		Application: sanitizeInput(req.Application),
		Amount:      core.Money{Cents: cents},
		Type:        core.TxType(sanitizeInput(req.Type)),
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
	}, nil
}
