package core

import "context"

type TxStatus string

const (
	TxStatusUnknown   TxStatus = "unknown"
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusRejected  TxStatus = "rejected"
)

func (s TxStatus) Final() bool {
	return s == TxStatusConfirmed || s == TxStatusRejected
}

type TransactionStatus struct {
	Hash   string   `json:"tx_hash"`
	Status TxStatus `json:"status"`
	Reason string   `json:"reason,omitempty"`
}

// LedgerService reads ledger truth and accepts finished transactions. Every
// call is an independent request, so implementations are safe for concurrent
// use.
type LedgerService interface {
	ListOutputs(ctx context.Context, owner Account) ([]*Output, error)
	Balance(ctx context.Context, owner Account) (Amount, error)
	Submit(ctx context.Context, tx *SignedTransaction) (string, error)
	Status(ctx context.Context, hash string) (*TransactionStatus, error)
}
