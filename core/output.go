package core

import (
	"encoding/hex"
	"fmt"
)

const OutputIDSize = 32

// OutputID is the ledger's stable reference to an unspent output.
type OutputID [OutputIDSize]byte

func ParseOutputID(s string) (OutputID, error) {
	var id OutputID
	if err := decodeFixedHex(s, id[:]); err != nil {
		return OutputID{}, fmt.Errorf("utxo id: %w", err)
	}

	return id, nil
}

func (id OutputID) String() string {
	return hex.EncodeToString(id[:])
}

func (id OutputID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *OutputID) UnmarshalText(text []byte) error {
	v, err := ParseOutputID(string(text))
	if err != nil {
		return err
	}

	*id = v
	return nil
}

// Output is an unspent transaction output as reported by the ledger.
type Output struct {
	ID     OutputID `json:"id"`
	Owner  Account  `json:"owner"`
	Amount Amount   `json:"amount"`
}

type Balance struct {
	Owner  Account `json:"owner"`
	Amount Amount  `json:"amount"`
	Count  int     `json:"count,omitempty"`
}

// SumOutputs totals the amounts of outputs.
func SumOutputs(outputs []*Output) (Amount, error) {
	var (
		sum Amount
		err error
	)

	for _, output := range outputs {
		if sum, err = sum.Add(output.Amount); err != nil {
			return Amount{}, err
		}
	}

	return sum, nil
}
