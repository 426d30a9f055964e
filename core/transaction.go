package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/oxtoacart/bpool"
	"golang.org/x/crypto/blake2b"
)

const NonceSize = fr.Bytes

var buffers = bpool.NewBufferPool(16)

// Nonce binds a proof to exactly one transaction.
type Nonce [NonceSize]byte

// NewNonce draws a random BN254 scalar so the value is usable as a circuit
// public input.
func NewNonce() (Nonce, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return Nonce{}, fmt.Errorf("generate nonce failed: %w", err)
	}

	return e.Bytes(), nil
}

func ParseNonce(s string) (Nonce, error) {
	var n Nonce
	if err := decodeFixedHex(s, n[:]); err != nil {
		return Nonce{}, fmt.Errorf("nonce: %w", err)
	}

	return n, nil
}

func (n Nonce) String() string {
	return hex.EncodeToString(n[:])
}

func (n Nonce) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Nonce) UnmarshalText(text []byte) error {
	v, err := ParseNonce(string(text))
	if err != nil {
		return err
	}

	*n = v
	return nil
}

type TxOutput struct {
	Owner  Account `json:"owner"`
	Amount Amount  `json:"amount"`
}

// Transaction is the unsigned transaction the proof attests to.
type Transaction struct {
	Nonce   Nonce      `json:"nonce"`
	Sender  Account    `json:"sender"`
	Inputs  []OutputID `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
	Fee     Amount     `json:"fee"`
}

// Encode returns the canonical encoding:
//
//	nonce | sender | u32 len(inputs) | ids | u32 len(outputs) | (owner | amount)... | fee
func (tx *Transaction) Encode() []byte {
	buf := buffers.Get()
	defer buffers.Put(buf)

	var n [4]byte

	buf.Write(tx.Nonce[:])
	buf.Write(tx.Sender[:])

	binary.BigEndian.PutUint32(n[:], uint32(len(tx.Inputs)))
	buf.Write(n[:])
	for _, id := range tx.Inputs {
		buf.Write(id[:])
	}

	binary.BigEndian.PutUint32(n[:], uint32(len(tx.Outputs)))
	buf.Write(n[:])
	for _, output := range tx.Outputs {
		amount := output.Amount.Bytes()
		buf.Write(output.Owner[:])
		buf.Write(amount[:])
	}

	fee := tx.Fee.Bytes()
	buf.Write(fee[:])

	b := make([]byte, buf.Len())
	copy(b, buf.Bytes())
	return b
}

// Hash is the blake2b-256 digest of the canonical encoding, hex encoded.
func (tx *Transaction) Hash() string {
	h := blake2b.Sum256(tx.Encode())
	return hex.EncodeToString(h[:])
}

func (tx *Transaction) OutputTotal() (Amount, error) {
	var (
		sum Amount
		err error
	)

	for _, output := range tx.Outputs {
		if sum, err = sum.Add(output.Amount); err != nil {
			return Amount{}, err
		}
	}

	return sum, nil
}

// SignedTransaction is what gets submitted: the transaction plus its proof.
type SignedTransaction struct {
	Transaction *Transaction
	Proof       *Proof
}
