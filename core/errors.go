package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrOverflow      = errors.New("amount overflow")
	ErrZeroAmount    = errors.New("zero amount transfer")
	ErrInvalidSecret = errors.New("secret does not authorize the sender account")
)

type InsufficientFundsError struct {
	Available Amount
	Requested Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s", e.Available.Dec(), e.Requested.Dec())
}

// NetworkError is a transport failure: the request may not have reached the
// ledger at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// LedgerError is a non-2xx response, a JSON-RPC error on a read call or a
// body that could not be decoded.
type LedgerError struct {
	Op      string
	Status  int
	Code    int
	Message string
}

func (e *LedgerError) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("ledger error: %s: rpc code %d: %s", e.Op, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("ledger error: %s: http %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("ledger error: %s: %s", e.Op, e.Message)
	}
}

// RejectedError carries the ledger's reason for refusing a transaction.
type RejectedError struct {
	Code   int
	Reason string
}

func (e *RejectedError) Error() string {
	return "transaction rejected: " + e.Reason
}

type ProofError struct {
	Circuit    Circuit
	Timeout    bool
	Diagnostic string
	Err        error
}

func (e *ProofError) Error() string {
	msg := fmt.Sprintf("proof generation failed (%s)", e.Circuit)
	if e.Timeout {
		msg += ": timed out"
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}

	return msg
}

func (e *ProofError) Unwrap() error {
	return e.Err
}

type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidFormat
	KindZeroAmount
	KindOverflow
	KindInsufficientFunds
	KindNetwork
	KindLedger
	KindRejected
	KindProofFailed
	KindInvalidSecret
	KindCanceled
)

var kindNames = [...]string{
	KindUnknown:           "Unknown",
	KindInvalidFormat:     "InvalidFormat",
	KindZeroAmount:        "ZeroAmount",
	KindOverflow:          "Overflow",
	KindInsufficientFunds: "InsufficientFunds",
	KindNetwork:           "NetworkError",
	KindLedger:            "LedgerError",
	KindRejected:          "RejectedTransaction",
	KindProofFailed:       "ProofGenerationFailed",
	KindInvalidSecret:     "InvalidSecret",
	KindCanceled:          "Canceled",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(?)"
}

// Class groups kinds by what the operator should do about them.
type Class uint8

const (
	ClassUnknown Class = iota
	// ClassInput means fix the request.
	ClassInput
	// ClassTransient means try again later.
	ClassTransient
	// ClassPermanent means the ledger or prover refused for good.
	ClassPermanent
)

func (c Class) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

func (k Kind) Class() Class {
	switch k {
	case KindInvalidFormat, KindZeroAmount, KindOverflow, KindInsufficientFunds, KindInvalidSecret:
		return ClassInput
	case KindNetwork, KindProofFailed, KindCanceled:
		return ClassTransient
	case KindLedger, KindRejected:
		return ClassPermanent
	default:
		return ClassUnknown
	}
}

func KindOf(err error) Kind {
	var (
		insufficient *InsufficientFundsError
		network      *NetworkError
		ledger       *LedgerError
		rejected     *RejectedError
		proof        *ProofError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidSecret):
		return KindInvalidSecret
	case errors.As(err, &proof):
		return KindProofFailed
	case errors.As(err, &rejected):
		return KindRejected
	case errors.As(err, &ledger):
		return KindLedger
	case errors.As(err, &network):
		return KindNetwork
	case errors.As(err, &insufficient):
		return KindInsufficientFunds
	case errors.Is(err, ErrZeroAmount):
		return KindZeroAmount
	case errors.Is(err, ErrOverflow):
		return KindOverflow
	case errors.Is(err, ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}
