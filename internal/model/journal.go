package model

import "time"

// JournalRecord captures the outcome of one workflow run for the transaction
// journal. It records history only; cached reads are never journaled.
type JournalRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Workflow  string    `json:"workflow"`
	Address   string    `json:"address"`
	PoolID    uint64    `json:"pool_id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Status    bool      `json:"status"`
	Message   string    `json:"message"`
	TxHash    string    `json:"tx_hash,omitempty"`
}
