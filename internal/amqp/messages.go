package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventTransactionsClear  = "transactions.cleared"
)

// TransactionEvent is the message published after every committed ledger
// mutation. It carries enough for a downstream consumer to track balance
// movement without querying the store: the signed delta in cents for
// created/deleted events, the number of removed records for clears.
type TransactionEvent struct {
	Event      string    `json:"event"`
	ID         string    `json:"id,omitempty"`
	OwnerID    string    `json:"owner_id"`
	Mode       string    `json:"mode,omitempty"`
	DeltaCents int64     `json:"delta_cents,omitempty"`
	Removed    int       `json:"removed,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
