package core

import (
	"context"
	"fmt"
)

// Circuit selects the proving circuit.
type Circuit string

const (
	// CircuitHashWallet proves knowledge of the sender's secret.
	CircuitHashWallet Circuit = "hash_wallet"
	// CircuitPermissionless spends from publicly spendable accounts.
	CircuitPermissionless Circuit = "permissionless"
)

type Proof struct {
	Circuit      Circuit `json:"circuit"`
	Data         []byte  `json:"proof"`
	VerifyingKey []byte  `json:"vk"`
	// Account is the address the prover bound the proof to.
	Account Account `json:"address"`
}

type ProofRequest struct {
	Circuit     Circuit
	Transaction []byte
	// Secret is nil for CircuitPermissionless.
	Secret *Secret
}

type ProofResponse struct {
	Proof        []byte
	VerifyingKey []byte
	Address      Account
}

// ProverError is a structured failure reported by the proving process.
type ProverError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const ProverCodeInvalidSecret = "invalid_secret"

func (e *ProverError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("prover: %s", e.Message)
	}

	return fmt.Sprintf("prover [%s]: %s", e.Code, e.Message)
}

// ProverBackend is the channel to the external proving process.
type ProverBackend interface {
	Prove(ctx context.Context, req *ProofRequest) (*ProofResponse, error)
	Address(ctx context.Context, secret *Secret) (Account, error)
}

// ProofService wraps a ProverBackend with timeouts and error mapping.
type ProofService interface {
	ProveAuthorized(ctx context.Context, tx *Transaction, secret *Secret) (*Proof, error)
	ProvePermissionless(ctx context.Context, tx *Transaction) (*Proof, error)
	DeriveAccount(ctx context.Context, secret *Secret) (Account, error)
}
