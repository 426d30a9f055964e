package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pandodao/zk-wallet/core"
	"github.com/pandodao/zk-wallet/service/ledger"
	"github.com/pandodao/zk-wallet/service/ledger/ledgertest"
	"github.com/pandodao/zk-wallet/worker/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = core.Account{0xa}
	bob   = core.Account{0xb}
)

func newTestServer(t *testing.T) (*ledgertest.Ledger, *watcher.Watcher, *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fake := ledgertest.New()
	ledgerSrv := ledgertest.Serve(fake)
	t.Cleanup(ledgerSrv.Close)

	ledgerz := ledger.New(logger, ledger.Config{
		Endpoint:  ledgerSrv.URL,
		Timeout:   5 * time.Second,
		RetryWait: time.Millisecond,
	})

	w := watcher.New(ledgerz, logger, watcher.Config{Interval: time.Second})
	s := New(ledgerz, w, logger, Config{MaxAccounts: 4, Concurrency: 2})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return fake, w, srv
}

func get(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestBalance(t *testing.T) {
	fake, _, srv := newTestServer(t)
	fake.AddOutputs(
		&core.Output{ID: core.OutputID{1}, Owner: alice, Amount: core.NewAmount(70)},
		&core.Output{ID: core.OutputID{2}, Owner: alice, Amount: core.NewAmount(50)},
	)

	var body Balance
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/accounts/"+alice.String()+"/balance", &body))
	assert.Equal(t, alice.String(), body.Owner)
	assert.Equal(t, core.NewAmount(120).String(), body.Amount)
	assert.Equal(t, "120", body.Decimal)

	var bad ErrorView
	require.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/accounts/xyz/balance", &bad))
	assert.Equal(t, "InvalidFormat", bad.Error.Kind)
	assert.Equal(t, "input", bad.Error.Class)
}

func TestBalances(t *testing.T) {
	fake, _, srv := newTestServer(t)
	fake.AddOutputs(
		&core.Output{ID: core.OutputID{1}, Owner: alice, Amount: core.NewAmount(7)},
		&core.Output{ID: core.OutputID{2}, Owner: bob, Amount: core.NewAmount(9)},
	)

	var body []*Balance
	url := srv.URL + "/balances?account=" + alice.String() + "&account=" + bob.String()
	require.Equal(t, http.StatusOK, get(t, url, &body))

	require.Len(t, body, 2)
	assert.Equal(t, "7", body[0].Decimal)
	assert.Equal(t, "9", body[1].Decimal)

	var bad ErrorView
	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/balances", &bad))
}

func TestOutputs(t *testing.T) {
	fake, _, srv := newTestServer(t)
	fake.SetPageSize(1)
	fake.AddOutputs(
		&core.Output{ID: core.OutputID{1}, Owner: alice, Amount: core.NewAmount(70)},
		&core.Output{ID: core.OutputID{2}, Owner: alice, Amount: core.NewAmount(50)},
	)

	var body OutputList
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/accounts/"+alice.String()+"/utxos", &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, core.NewAmount(120).String(), body.Total)
	assert.Equal(t, core.OutputID{1}.String(), body.Outputs[0].ID)
}

func TestLedgerDown(t *testing.T) {
	fake, _, srv := newTestServer(t)
	fake.Garbage(true)

	var body ErrorView
	require.Equal(t, http.StatusBadGateway, get(t, srv.URL+"/accounts/"+alice.String()+"/balance", &body))
	assert.Equal(t, "LedgerError", body.Error.Kind)
	assert.Equal(t, "permanent", body.Error.Class)
}

func TestStatusAndWatch(t *testing.T) {
	fake, w, srv := newTestServer(t)

	hash := strings.Repeat("ab", 32)
	fake.SetStatus(&core.TransactionStatus{Hash: hash, Status: core.TxStatusRejected, Reason: "double spend"})

	var status core.TransactionStatus
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/transactions/"+hash, &status))
	assert.Equal(t, core.TxStatusRejected, status.Status)
	assert.Equal(t, "double spend", status.Reason)

	var bad ErrorView
	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/transactions/nothex", &bad))

	resp, err := http.Post(srv.URL+"/transactions/"+hash+"/watch", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []string{hash}, w.Pending())
}

// heldLedger blocks Balance until release is closed and fails it when the
// call context is done by then.
type heldLedger struct {
	core.LedgerService

	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (l *heldLedger) Balance(ctx context.Context, _ core.Account) (core.Amount, error) {
	if l.calls.Add(1) == 1 {
		close(l.started)
	}

	<-l.release
	if err := ctx.Err(); err != nil {
		return core.Amount{}, err
	}

	return core.NewAmount(5), nil
}

func TestFoldedBalanceSurvivesFirstCallerCancel(t *testing.T) {
	held := &heldLedger{started: make(chan struct{}), release: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := watcher.New(held, logger, watcher.Config{Interval: time.Second})
	s := New(held, w, logger, Config{MaxAccounts: 4, Concurrency: 2})

	first, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := s.balance(first, alice)
		firstDone <- err
	}()

	<-held.started

	secondDone := make(chan *core.Balance, 1)
	go func() {
		balance, err := s.balance(context.Background(), alice)
		assert.NoError(t, err)
		secondDone <- balance
	}()

	// let the second caller join the in-flight call
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(held.release)

	balance := <-secondDone
	require.NotNil(t, balance)
	assert.Equal(t, "5", balance.Amount.Dec())
	assert.NoError(t, <-firstDone)
	assert.EqualValues(t, 1, held.calls.Load())
}
