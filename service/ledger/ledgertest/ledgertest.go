// Package ledgertest runs an in-memory JSON-RPC ledger for tests.
package ledgertest

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/pandodao/zk-wallet/core"
	"golang.org/x/crypto/blake2b"
)

// CodeRejected is the JSON-RPC error code used for refused transactions.
const CodeRejected = -32000

type Submission struct {
	Hash  string
	Tx    []byte
	Proof []byte
	VK    []byte
}

type Ledger struct {
	mux sync.Mutex

	pageSize     int
	rejectReason string
	omitHash     bool
	autoConfirm  bool

	outputs    map[core.Account][]*core.Output
	balances   map[core.Account]string
	statuses   map[string]*core.TransactionStatus
	submitted  []*Submission
	requests   map[string]int
	dropNext   int
	statusNext int
	garbage    bool
}

func New() *Ledger {
	return &Ledger{
		pageSize: 2,
		outputs:  map[core.Account][]*core.Output{},
		balances: map[core.Account]string{},
		statuses: map[string]*core.TransactionStatus{},
		requests: map[string]int{},
	}
}

type Server struct {
	*httptest.Server
	closeBridge func()
}

func (s *Server) Close() {
	s.Server.Close()
	s.closeBridge()
}

// Serve starts an httptest server for l. Close the server when done.
func Serve(l *Ledger) *Server {
	jh := jhttp.NewBridge(l.methods(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	return &Server{
		Server:      httptest.NewServer(l.faults(jh.ServeHTTP)),
		closeBridge: func() { _ = jh.Close() },
	}
}

func (l *Ledger) SetPageSize(n int) {
	l.mux.Lock()
	l.pageSize = n
	l.mux.Unlock()
}

// Reject makes submit_transaction fail with CodeRejected and reason. An
// empty reason accepts transactions again.
func (l *Ledger) Reject(reason string) {
	l.mux.Lock()
	l.rejectReason = reason
	l.mux.Unlock()
}

// OmitHash makes submit_transaction answer without a tx_hash.
func (l *Ledger) OmitHash(on bool) {
	l.mux.Lock()
	l.omitHash = on
	l.mux.Unlock()
}

// AutoConfirm marks accepted transactions confirmed instead of pending.
func (l *Ledger) AutoConfirm(on bool) {
	l.mux.Lock()
	l.autoConfirm = on
	l.mux.Unlock()
}

func (l *Ledger) AddOutputs(outputs ...*core.Output) {
	l.mux.Lock()
	defer l.mux.Unlock()

	for _, output := range outputs {
		l.outputs[output.Owner] = append(l.outputs[output.Owner], output)
	}
}

// SetBalance overrides the reported balance with a raw result string.
func (l *Ledger) SetBalance(owner core.Account, raw string) {
	l.mux.Lock()
	l.balances[owner] = raw
	l.mux.Unlock()
}

func (l *Ledger) SetStatus(status *core.TransactionStatus) {
	l.mux.Lock()
	l.statuses[status.Hash] = status
	l.mux.Unlock()
}

// DropNext closes the next n connections without answering.
func (l *Ledger) DropNext(n int) {
	l.mux.Lock()
	l.dropNext = n
	l.mux.Unlock()
}

// FailNext answers the next request with the given HTTP status.
func (l *Ledger) FailNext(status int) {
	l.mux.Lock()
	l.statusNext = status
	l.mux.Unlock()
}

// Garbage makes every answer a malformed body.
func (l *Ledger) Garbage(on bool) {
	l.mux.Lock()
	l.garbage = on
	l.mux.Unlock()
}

// Requests counts HTTP requests that reached the ledger, dropped ones
// included, under the key "http".
func (l *Ledger) Requests(method string) int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.requests[method]
}

func (l *Ledger) Submitted() []*Submission {
	l.mux.Lock()
	defer l.mux.Unlock()
	return slices.Clone(l.submitted)
}

func (l *Ledger) faults(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.mux.Lock()
		l.requests["http"]++
		drop := l.dropNext > 0
		if drop {
			l.dropNext--
		}

		status := l.statusNext
		l.statusNext = 0
		garbage := l.garbage
		l.mux.Unlock()

		switch {
		case drop:
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}

			panic(http.ErrAbortHandler)
		case status != 0:
			http.Error(w, http.StatusText(status), status)
		case garbage:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":`))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (l *Ledger) count(method string) {
	l.mux.Lock()
	l.requests[method]++
	l.mux.Unlock()
}

type ownerParams struct {
	Addr string `json:"addr"`
}

type pageParams struct {
	LastOutputID string `json:"last_utxo_id"`
	Owner        string `json:"owner"`
}

type page struct {
	Outputs      []*core.Output `json:"utxos"`
	LastOutputID string         `json:"last_utxo_id"`
}

type submitParams struct {
	Tx    string `json:"tx"`
	Proof string `json:"proof"`
	VK    string `json:"vk"`
}

type submitResult struct {
	Hash string `json:"tx_hash,omitempty"`
}

type statusParams struct {
	Hash string `json:"tx_hash"`
}

func (l *Ledger) methods() handler.Map {
	return handler.Map{
		"get_balance_by_owner": handler.New(func(ctx context.Context, p ownerParams) (string, error) {
			l.count("get_balance_by_owner")

			owner, err := core.ParseAccount(p.Addr)
			if err != nil {
				return "", jrpc2.Errorf(jrpc2.InvalidParams, "%v", err)
			}

			l.mux.Lock()
			defer l.mux.Unlock()

			if raw, ok := l.balances[owner]; ok {
				return raw, nil
			}

			sum, err := core.SumOutputs(l.outputs[owner])
			if err != nil {
				return "", err
			}

			return sum.String(), nil
		}),
		"get_list_of_utxo_by_owner_paginated": handler.New(func(ctx context.Context, p pageParams) (*page, error) {
			l.count("get_list_of_utxo_by_owner_paginated")

			owner, err := core.ParseAccount(p.Owner)
			if err != nil {
				return nil, jrpc2.Errorf(jrpc2.InvalidParams, "%v", err)
			}

			cursor, err := core.ParseOutputID(p.LastOutputID)
			if err != nil {
				return nil, jrpc2.Errorf(jrpc2.InvalidParams, "%v", err)
			}

			l.mux.Lock()
			defer l.mux.Unlock()

			outputs := slices.Clone(l.outputs[owner])
			slices.SortFunc(outputs, func(a, b *core.Output) int {
				return bytes.Compare(a.ID[:], b.ID[:])
			})

			var result page
			for _, output := range outputs {
				if bytes.Compare(output.ID[:], cursor[:]) <= 0 {
					continue
				}

				result.Outputs = append(result.Outputs, output)
				result.LastOutputID = output.ID.String()
				if len(result.Outputs) == l.pageSize {
					break
				}
			}

			if result.Outputs == nil {
				result.Outputs = []*core.Output{}
			}

			return &result, nil
		}),
		"submit_transaction": handler.New(func(ctx context.Context, p submitParams) (*submitResult, error) {
			l.count("submit_transaction")

			tx, err := hex.DecodeString(p.Tx)
			if err != nil {
				return nil, jrpc2.Errorf(jrpc2.InvalidParams, "tx: %v", err)
			}

			proof, _ := hex.DecodeString(p.Proof)
			vk, _ := hex.DecodeString(p.VK)

			l.mux.Lock()
			defer l.mux.Unlock()

			if l.rejectReason != "" {
				return nil, jrpc2.Errorf(CodeRejected, "%s", l.rejectReason)
			}

			sum := blake2b.Sum256(tx)
			hash := hex.EncodeToString(sum[:])

			l.submitted = append(l.submitted, &Submission{Hash: hash, Tx: tx, Proof: proof, VK: vk})
			status := core.TxStatusPending
			if l.autoConfirm {
				status = core.TxStatusConfirmed
			}

			l.statuses[hash] = &core.TransactionStatus{Hash: hash, Status: status}

			if l.omitHash {
				return &submitResult{}, nil
			}

			return &submitResult{Hash: hash}, nil
		}),
		"get_transaction_status": handler.New(func(ctx context.Context, p statusParams) (*core.TransactionStatus, error) {
			l.count("get_transaction_status")

			l.mux.Lock()
			defer l.mux.Unlock()

			if status, ok := l.statuses[p.Hash]; ok {
				v := *status
				return &v, nil
			}

			return &core.TransactionStatus{Hash: p.Hash, Status: core.TxStatusUnknown}, nil
		}),
	}
}
