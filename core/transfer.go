package core

import "context"

type TransferState uint8

const (
	TransferStateIdle TransferState = iota
	TransferStateFetchingOutputs
	TransferStateSelecting
	TransferStateBuilding
	TransferStateProving
	TransferStateSubmitting
	TransferStateSucceeded
	TransferStateFailed
)

var transferStateNames = [...]string{
	TransferStateIdle:            "Idle",
	TransferStateFetchingOutputs: "FetchingUTXOs",
	TransferStateSelecting:       "Selecting",
	TransferStateBuilding:        "Building",
	TransferStateProving:         "Proving",
	TransferStateSubmitting:      "Submitting",
	TransferStateSucceeded:       "Succeeded",
	TransferStateFailed:          "Failed",
}

func (s TransferState) String() string {
	if int(s) < len(transferStateNames) {
		return transferStateNames[s]
	}

	return "TransferState(?)"
}

func (s TransferState) Terminal() bool {
	return s == TransferStateSucceeded || s == TransferStateFailed
}

// CanTransition reports whether the pipeline may move from s to next. The
// pipeline is linear: each stage advances by one or fails.
func (s TransferState) CanTransition(next TransferState) bool {
	switch {
	case s.Terminal():
		return false
	case next == TransferStateFailed:
		return true
	default:
		return next == s+1
	}
}

type TransferRequest struct {
	From   Account
	To     Account
	Amount Amount
	// Secret authorizes the spend. Nil selects the permissionless circuit.
	Secret *Secret
	// Nonce pins the binding value, nil draws a fresh one.
	Nonce *Nonce
}

func (r *TransferRequest) Circuit() Circuit {
	if r.Secret == nil {
		return CircuitPermissionless
	}

	return CircuitHashWallet
}

type Receipt struct {
	Hash        string        `json:"tx_hash,omitempty"`
	State       TransferState `json:"-"`
	Transaction *Transaction  `json:"transaction,omitempty"`
	Selected    []*Output     `json:"selected,omitempty"`
	Change      Amount        `json:"change"`
	Proof       *Proof        `json:"-"`
}

type TransferService interface {
	Transfer(ctx context.Context, req *TransferRequest) (*Receipt, error)
}
