package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pandodao/zk-wallet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	status core.TxStatus
	err    error
}

// scriptedLedger answers Status from a per-hash script, repeating the last
// step once the script runs out.
type scriptedLedger struct {
	core.LedgerService

	mux     sync.Mutex
	scripts map[string][]step
	calls   map[string]int
}

func (l *scriptedLedger) Status(_ context.Context, hash string) (*core.TransactionStatus, error) {
	l.mux.Lock()
	defer l.mux.Unlock()

	script := l.scripts[hash]
	idx := min(l.calls[hash], len(script)-1)
	l.calls[hash]++

	s := script[idx]
	if s.err != nil {
		return nil, s.err
	}

	return &core.TransactionStatus{Hash: hash, Status: s.status, Reason: "r"}, nil
}

func (l *scriptedLedger) count(hash string) int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.calls[hash]
}

func newWatcher(scripts map[string][]step) (*Watcher, *scriptedLedger) {
	ledger := &scriptedLedger{scripts: scripts, calls: map[string]int{}}
	return New(ledger, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Interval: time.Millisecond}), ledger
}

func TestWait(t *testing.T) {
	network := &core.NetworkError{Op: "get_transaction_status", Err: errors.New("reset")}

	tests := []struct {
		name       string
		script     []step
		wantStatus core.TxStatus
		wantKind   core.Kind
		wantCalls  int
	}{
		{
			name:       "confirmed after pending",
			script:     []step{{status: core.TxStatusUnknown}, {status: core.TxStatusPending}, {status: core.TxStatusConfirmed}},
			wantStatus: core.TxStatusConfirmed,
			wantCalls:  3,
		},
		{
			name:       "rejected",
			script:     []step{{status: core.TxStatusRejected}},
			wantStatus: core.TxStatusRejected,
			wantCalls:  1,
		},
		{
			name:       "network errors are polled through",
			script:     []step{{err: network}, {err: network}, {status: core.TxStatusConfirmed}},
			wantStatus: core.TxStatusConfirmed,
			wantCalls:  3,
		},
		{
			name:      "ledger error ends the wait",
			script:    []step{{status: core.TxStatusPending}, {err: &core.LedgerError{Op: "get_transaction_status", Code: -32601}}},
			wantKind:  core.KindLedger,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ledger := newWatcher(map[string][]step{"h": tt.script})

			status, err := w.Wait(context.Background(), "h")
			if tt.wantKind != core.KindUnknown {
				assert.Equal(t, tt.wantKind, core.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, status.Status)
			}

			assert.Equal(t, tt.wantCalls, ledger.count("h"))
		})
	}
}

func TestWaitCanceled(t *testing.T) {
	w, _ := newWatcher(map[string][]step{"h": {{status: core.TxStatusPending}}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := w.Wait(ctx, "h")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun(t *testing.T) {
	w, ledger := newWatcher(map[string][]step{
		"a": {{status: core.TxStatusPending}, {status: core.TxStatusConfirmed}},
		"b": {{status: core.TxStatusPending}},
	})

	assert.True(t, w.Watch("a"))
	assert.True(t, w.Watch("b"))
	assert.False(t, w.Watch("a"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.Pending()) == 1
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, []string{"b"}, w.Pending())
	assert.Equal(t, 2, ledger.count("a"))
	assert.GreaterOrEqual(t, ledger.count("b"), 1)
}
