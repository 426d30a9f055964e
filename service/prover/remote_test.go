package prover

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pandodao/zk-wallet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemoteProver(t *testing.T, h http.HandlerFunc) core.ProverBackend {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewRemote(RemoteConfig{Endpoint: srv.URL + "/"})
}

func TestRemoteProve(t *testing.T) {
	var got proveRequest

	backend := newRemoteProver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prove", r.URL.Path)

		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got))

		_, _ = w.Write([]byte(`{"proof":"0102","vk":"03","address":"` + alice.String() + `"}`))
	})

	tx := testTx()
	resp, err := backend.Prove(context.Background(), &core.ProofRequest{
		Circuit:     core.CircuitPermissionless,
		Transaction: tx.Encode(),
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2}, resp.Proof)
	assert.Equal(t, []byte{3}, resp.VerifyingKey)
	assert.Equal(t, alice, resp.Address)

	assert.Equal(t, core.CircuitPermissionless, got.Circuit)
	assert.Equal(t, hex.EncodeToString(tx.Encode()), got.Tx)
	assert.Empty(t, got.Secret)
}

func TestRemoteAddress(t *testing.T) {
	secret, err := core.NewSecret()
	require.NoError(t, err)

	backend := newRemoteProver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address", r.URL.Path)

		var req addressRequest
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &req))
		assert.Equal(t, secret.Reveal(), req.Secret)

		_, _ = w.Write([]byte(`{"address":"` + bob.String() + `"}`))
	})

	account, err := backend.Address(context.Background(), secret)
	require.NoError(t, err)
	assert.Equal(t, bob, account)
}

func TestRemoteErrors(t *testing.T) {
	secret, err := core.NewSecret()
	require.NoError(t, err)

	t.Run("invalid secret", func(t *testing.T) {
		backend := newRemoteProver(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":{"code":"invalid_secret","message":"no"}}`))
		})

		_, err := newCoordinator(backend, time.Second).ProveAuthorized(context.Background(), testTx(), secret)
		assert.ErrorIs(t, err, core.ErrInvalidSecret)
	})

	t.Run("server error", func(t *testing.T) {
		calls := 0
		backend := newRemoteProver(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		})

		_, err := newCoordinator(backend, time.Second).ProvePermissionless(context.Background(), testTx())
		assert.Equal(t, core.KindProofFailed, core.KindOf(err))
		assert.Contains(t, err.Error(), "overloaded")
		assert.Equal(t, 1, calls)
	})

	t.Run("timeout", func(t *testing.T) {
		backend := newRemoteProver(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})

		_, err := newCoordinator(backend, 50*time.Millisecond).ProvePermissionless(context.Background(), testTx())

		var proofErr *core.ProofError
		require.ErrorAs(t, err, &proofErr)
		assert.True(t, proofErr.Timeout)
	})
}
