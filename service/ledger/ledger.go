package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/pandodao/zk-wallet/core"
	"github.com/zyedidia/generic/mapset"
)

const (
	methodBalance = "get_balance_by_owner"
	methodOutputs = "get_list_of_utxo_by_owner_paginated"
	methodSubmit  = "submit_transaction"
	methodStatus  = "get_transaction_status"
)

// firstCursor asks the ledger for the first page.
var firstCursor = core.OutputID{}.String()

type Config struct {
	Endpoint  string `valid:"requrl,required"`
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	// PageLimit caps the pages read by a single ListOutputs.
	PageLimit int
	// SumBalance derives Balance from the output list instead of asking the
	// ledger.
	SumBalance bool
}

func New(logger *slog.Logger, cfg Config) core.LedgerService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}

	client := resty.New().
		SetRetryCount(max(cfg.Retries, 0)).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4 * max(cfg.RetryWait, time.Second)).
		AddRetryCondition(func(_ *resty.Response, err error) bool {
			return err != nil
		})

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &service{
		client: client,
		logger: logger.With("service", "ledger"),
		cfg:    cfg,
	}
}

type service struct {
	client *resty.Client
	logger *slog.Logger
	cfg    Config
}

type ownerParams struct {
	Addr string `json:"addr"`
}

func (s *service) Balance(ctx context.Context, owner core.Account) (core.Amount, error) {
	if s.cfg.SumBalance {
		outputs, err := s.ListOutputs(ctx, owner)
		if err != nil {
			return core.Amount{}, err
		}

		return core.SumOutputs(outputs)
	}

	var raw string
	if err := s.read(ctx, methodBalance, ownerParams{Addr: owner.String()}, &raw); err != nil {
		return core.Amount{}, err
	}

	amount, err := core.ParseAmount(raw)
	if err != nil {
		return core.Amount{}, &core.LedgerError{Op: methodBalance, Message: "malformed balance: " + err.Error()}
	}

	return amount, nil
}

type pageParams struct {
	LastOutputID string `json:"last_utxo_id"`
	Owner        string `json:"owner"`
}

type page struct {
	Outputs      []*core.Output `json:"utxos"`
	LastOutputID string         `json:"last_utxo_id"`
}

// ListOutputs walks the paginated listing until an empty page or an empty or
// repeated cursor. Outputs seen twice are reported once. Hitting the page
// limit is an error, never a partial list.
func (s *service) ListOutputs(ctx context.Context, owner core.Account) ([]*core.Output, error) {
	var (
		outputs []*core.Output
		seen    = mapset.New[core.OutputID]()
		cursor  = firstCursor
	)

	for n := 0; n < s.cfg.PageLimit; n++ {
		var p page
		if err := s.read(ctx, methodOutputs, pageParams{LastOutputID: cursor, Owner: owner.String()}, &p); err != nil {
			return nil, err
		}

		if len(p.Outputs) == 0 {
			return outputs, nil
		}

		for _, output := range p.Outputs {
			if output.Owner != owner {
				return nil, &core.LedgerError{Op: methodOutputs, Message: "output " + output.ID.String() + " is not owned by " + owner.String()}
			}

			if seen.Has(output.ID) {
				s.logger.Warn("duplicate output", "id", output.ID, "cursor", cursor)
				continue
			}

			seen.Put(output.ID)
			outputs = append(outputs, output)
		}

		if p.LastOutputID == "" || p.LastOutputID == cursor {
			return outputs, nil
		}

		cursor = p.LastOutputID
	}

	s.logger.Error("page limit reached", "owner", owner, "limit", s.cfg.PageLimit, "count", len(outputs))
	return nil, &core.LedgerError{
		Op:      methodOutputs,
		Message: fmt.Sprintf("page limit %d reached with %d outputs read", s.cfg.PageLimit, len(outputs)),
	}
}

type submitParams struct {
	Tx    string `json:"tx"`
	Proof string `json:"proof"`
	VK    string `json:"vk"`
}

type submitResult struct {
	Hash string `json:"tx_hash"`
}

// Submit returns the ledger's hash, empty when the ledger does not report
// one. Any JSON-RPC error is the ledger refusing the transaction.
func (s *service) Submit(ctx context.Context, tx *core.SignedTransaction) (string, error) {
	params := submitParams{
		Tx:    hex.EncodeToString(tx.Transaction.Encode()),
		Proof: hex.EncodeToString(tx.Proof.Data),
		VK:    hex.EncodeToString(tx.Proof.VerifyingKey),
	}

	var result submitResult
	if err := s.call(ctx, methodSubmit, params, &result); err != nil {
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return "", &core.RejectedError{Code: rpcErr.Code, Reason: rpcErr.Message}
		}

		return "", err
	}

	return result.Hash, nil
}

type statusParams struct {
	Hash string `json:"tx_hash"`
}

func (s *service) Status(ctx context.Context, hash string) (*core.TransactionStatus, error) {
	var status core.TransactionStatus
	if err := s.read(ctx, methodStatus, statusParams{Hash: hash}, &status); err != nil {
		return nil, err
	}

	if status.Hash == "" {
		status.Hash = hash
	}

	if status.Status == "" {
		status.Status = core.TxStatusUnknown
	}

	return &status, nil
}

// read is call for methods where a JSON-RPC error is a ledger failure.
func (s *service) read(ctx context.Context, method string, params, out any) error {
	err := s.call(ctx, method, params, out)

	var rpcErr *rpcError
	if errors.As(err, &rpcErr) {
		return rpcErr.ledgerError(method)
	}

	return err
}
