package core

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const AmountSize = 32

// Amount is a 32-byte unsigned big-endian integer. The zero value is zero.
type Amount struct {
	v uint256.Int
}

func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// AmountFromBytes interprets b as a big-endian integer. Inputs longer than
// 32 bytes are accepted only when the extra leading bytes are zero.
func AmountFromBytes(b []byte) (Amount, error) {
	if len(b) > AmountSize {
		head := b[:len(b)-AmountSize]
		if len(bytes.TrimLeft(head, "\x00")) > 0 {
			return Amount{}, fmt.Errorf("%w: %d bytes do not fit in %d", ErrOverflow, len(b), AmountSize)
		}

		b = b[len(b)-AmountSize:]
	}

	var a Amount
	a.v.SetBytes(b)
	return a, nil
}

// ParseAmount decodes exactly 64 hex characters.
func ParseAmount(s string) (Amount, error) {
	var b [AmountSize]byte
	if err := decodeFixedHex(s, b[:]); err != nil {
		return Amount{}, fmt.Errorf("amount: %w", err)
	}

	return AmountFromBytes(b[:])
}

func (a Amount) Bytes() [AmountSize]byte {
	return a.v.Bytes32()
}

// String returns 64 lowercase hex characters.
func (a Amount) String() string {
	b := a.Bytes()
	return hex.EncodeToString(b[:])
}

// Dec returns the base 10 representation.
func (a Amount) Dec() string {
	return a.v.Dec()
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Equal(b Amount) bool {
	return a.v.Eq(&b.v)
}

func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a.Dec(), b.Dec())
	}

	return r, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, fmt.Errorf("%w: %s - %s is negative", ErrOverflow, a.Dec(), b.Dec())
	}

	return r, nil
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	v, err := ParseAmount(string(text))
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// SumAmounts adds up amounts, failing with ErrOverflow past 256 bits.
func SumAmounts(amounts ...Amount) (Amount, error) {
	var (
		sum Amount
		err error
	)

	for _, a := range amounts {
		if sum, err = sum.Add(a); err != nil {
			return Amount{}, err
		}
	}

	return sum, nil
}
