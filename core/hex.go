package core

import (
	"encoding/hex"
	"fmt"
)

// decodeFixedHex decodes s into dst. s must hold exactly 2*len(dst) hex
// characters, either case.
func decodeFixedHex(s string, dst []byte) error {
	if want := hex.EncodedLen(len(dst)); len(s) != want {
		return fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidFormat, want, len(s))
	}

	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return nil
}
