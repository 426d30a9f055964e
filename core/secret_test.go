package core

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretIsRedacted(t *testing.T) {
	secret, err := NewSecret()
	require.NoError(t, err)

	raw := secret.Reveal()
	require.Len(t, raw, 64)

	for _, s := range []string{
		fmt.Sprint(secret),
		fmt.Sprint(*secret),
		fmt.Sprintf("%v %+v %#v %s %x", secret, secret, *secret, secret, *secret),
	} {
		assert.NotContains(t, s, raw)
		assert.Contains(t, s, redacted)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("transfer", "secret", secret)
	logger.Info("transfer", "secret", *secret)

	assert.NotContains(t, buf.String(), raw)
	assert.Equal(t, 2, strings.Count(buf.String(), redacted))
}

func TestParseSecret(t *testing.T) {
	secret, err := NewSecret()
	require.NoError(t, err)

	parsed, err := ParseSecret(strings.ToUpper(secret.Reveal()))
	require.NoError(t, err)
	assert.Equal(t, secret.Reveal(), parsed.Reveal())

	// the BN254 modulus itself is not a canonical scalar
	_, err = ParseSecret("30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseSecret("abcd")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSecretWipe(t *testing.T) {
	secret, err := NewSecret()
	require.NoError(t, err)
	require.False(t, secret.IsZero())

	secret.Wipe()
	assert.True(t, secret.IsZero())
	assert.Equal(t, strings.Repeat("0", 64), secret.Reveal())

	var nilSecret *Secret
	nilSecret.Wipe()
	assert.True(t, nilSecret.IsZero())
}
