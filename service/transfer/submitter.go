package transfer

import (
	"context"

	"github.com/pandodao/zk-wallet/core"
)

// Submitter is the only place a transaction reaches the ledger.
type Submitter struct {
	ledger core.LedgerService
}

func NewSubmitter(ledger core.LedgerService) *Submitter {
	return &Submitter{ledger: ledger}
}

// Submit sends tx with its proof. Ledger errors are returned as is so the
// caller can tell a rejection from a network failure.
func (s *Submitter) Submit(ctx context.Context, tx *core.Transaction, proof *core.Proof) (string, error) {
	hash, err := s.ledger.Submit(ctx, &core.SignedTransaction{
		Transaction: tx,
		Proof:       proof,
	})
	if err != nil {
		return "", err
	}

	if hash == "" {
		hash = tx.Hash()
	}

	return hash, nil
}
