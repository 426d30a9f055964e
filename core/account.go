package core

import (
	"encoding/hex"
	"fmt"
)

const AccountSize = 32

// Account is the public identifier UTXOs are held under. It is derived from a
// Secret by the prover and never changes.
type Account [AccountSize]byte

func ParseAccount(s string) (Account, error) {
	var a Account
	if err := decodeFixedHex(s, a[:]); err != nil {
		return Account{}, fmt.Errorf("account: %w", err)
	}

	return a, nil
}

func (a Account) String() string {
	return hex.EncodeToString(a[:])
}

func (a Account) IsZero() bool {
	return a == Account{}
}

func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Account) UnmarshalText(text []byte) error {
	v, err := ParseAccount(string(text))
	if err != nil {
		return err
	}

	*a = v
	return nil
}
