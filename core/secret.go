package core

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	SecretSize = fr.Bytes

	redacted = "REDACTED"
)

// Secret is the private value behind an Account. It is only ever handed to
// the prover and renders as REDACTED everywhere else. Callers Wipe it as soon
// as the proof call returns.
type Secret struct {
	b [SecretSize]byte
}

// NewSecret draws a uniformly random BN254 scalar.
func NewSecret() (*Secret, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return nil, fmt.Errorf("generate secret failed: %w", err)
	}

	return &Secret{b: e.Bytes()}, nil
}

// ParseSecret decodes 64 hex characters holding a canonical BN254 scalar.
func ParseSecret(s string) (*Secret, error) {
	var secret Secret
	if err := decodeFixedHex(s, secret.b[:]); err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}

	var e fr.Element
	if err := e.SetBytesCanonical(secret.b[:]); err != nil {
		secret.Wipe()
		return nil, fmt.Errorf("secret: %w: not a canonical field element", ErrInvalidFormat)
	}

	return &secret, nil
}

// Reveal returns the hex encoding. Only prover backends call it.
func (s *Secret) Reveal() string {
	return hex.EncodeToString(s.b[:])
}

func (s *Secret) Wipe() {
	if s == nil {
		return
	}

	for i := range s.b {
		s.b[i] = 0
	}
}

func (s *Secret) IsZero() bool {
	return s == nil || s.b == [SecretSize]byte{}
}

func (Secret) String() string {
	return redacted
}

func (Secret) GoString() string {
	return redacted
}

func (Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

func (Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}
