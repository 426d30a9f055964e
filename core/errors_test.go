package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  Kind
		class Class
	}{
		{
			name:  "format",
			err:   fmt.Errorf("parse --to: %w", ErrInvalidFormat),
			kind:  KindInvalidFormat,
			class: ClassInput,
		},
		{
			name:  "insufficient",
			err:   fmt.Errorf("select: %w", &InsufficientFundsError{Available: NewAmount(15), Requested: NewAmount(100)}),
			kind:  KindInsufficientFunds,
			class: ClassInput,
		},
		{
			name:  "zero amount",
			err:   ErrZeroAmount,
			kind:  KindZeroAmount,
			class: ClassInput,
		},
		{
			name:  "overflow",
			err:   fmt.Errorf("sum: %w", ErrOverflow),
			kind:  KindOverflow,
			class: ClassInput,
		},
		{
			name:  "network",
			err:   &NetworkError{Op: "submit_transaction", Err: errors.New("connection refused")},
			kind:  KindNetwork,
			class: ClassTransient,
		},
		{
			name:  "ledger",
			err:   &LedgerError{Op: "get_balance_by_owner", Status: 500},
			kind:  KindLedger,
			class: ClassPermanent,
		},
		{
			name:  "rejected",
			err:   &RejectedError{Reason: "double spend"},
			kind:  KindRejected,
			class: ClassPermanent,
		},
		{
			name:  "proof",
			err:   &ProofError{Circuit: CircuitPermissionless, Timeout: true, Err: context.DeadlineExceeded},
			kind:  KindProofFailed,
			class: ClassTransient,
		},
		{
			name:  "invalid secret",
			err:   fmt.Errorf("prove: %w", ErrInvalidSecret),
			kind:  KindInvalidSecret,
			class: ClassInput,
		},
		{
			name:  "canceled",
			err:   fmt.Errorf("fetch: %w", context.Canceled),
			kind:  KindCanceled,
			class: ClassTransient,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := KindOf(tt.err)
			assert.Equal(t, tt.kind, kind, kind.String())
			assert.Equal(t, tt.class, kind.Class())
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := &InsufficientFundsError{Available: NewAmount(15), Requested: NewAmount(100)}
	assert.Equal(t, "insufficient funds: available 15, requested 100", err.Error())

	rejected := &RejectedError{Reason: "input already spent"}
	assert.Contains(t, rejected.Error(), "input already spent")

	proof := &ProofError{Circuit: CircuitHashWallet, Timeout: true, Diagnostic: "killed"}
	assert.Equal(t, "proof generation failed (hash_wallet): timed out: killed", proof.Error())
}

func TestTransferState(t *testing.T) {
	assert.True(t, TransferStateIdle.CanTransition(TransferStateFetchingOutputs))
	assert.True(t, TransferStateProving.CanTransition(TransferStateFailed))
	assert.True(t, TransferStateSubmitting.CanTransition(TransferStateSucceeded))
	assert.False(t, TransferStateSelecting.CanTransition(TransferStateFetchingOutputs))
	assert.False(t, TransferStateSucceeded.CanTransition(TransferStateFailed))
	assert.False(t, TransferStateFailed.CanTransition(TransferStateIdle))
	assert.Equal(t, "FetchingUTXOs", TransferStateFetchingOutputs.String())
}
