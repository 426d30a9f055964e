package prover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zk-wallet/core"
)

type Config struct {
	Timeout time.Duration `valid:"required"`
}

// New returns the proof coordinator. It applies the timeout, maps backend
// failures onto the wallet's error kinds and checks that every proof is bound
// to the transaction's sender. It never retries.
func New(backend core.ProverBackend, logger *slog.Logger, cfg Config) core.ProofService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &coordinator{
		backend: backend,
		logger:  logger.With("service", "prover"),
		cfg:     cfg,
	}
}

type coordinator struct {
	backend core.ProverBackend
	logger  *slog.Logger
	cfg     Config
}

func (c *coordinator) ProveAuthorized(ctx context.Context, tx *core.Transaction, secret *core.Secret) (*core.Proof, error) {
	if secret.IsZero() {
		return nil, fmt.Errorf("%w: empty secret", core.ErrInvalidSecret)
	}

	return c.prove(ctx, tx, core.CircuitHashWallet, secret)
}

func (c *coordinator) ProvePermissionless(ctx context.Context, tx *core.Transaction) (*core.Proof, error) {
	return c.prove(ctx, tx, core.CircuitPermissionless, nil)
}

func (c *coordinator) prove(ctx context.Context, tx *core.Transaction, circuit core.Circuit, secret *core.Secret) (*core.Proof, error) {
	logger := c.logger.With("circuit", circuit, "tx", tx.Hash())

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.backend.Prove(ctx, &core.ProofRequest{
		Circuit:     circuit,
		Transaction: tx.Encode(),
		Secret:      secret,
	})
	if err != nil {
		err = c.mapError(ctx, circuit, err)
		logger.Error("backend.Prove", "dur", time.Since(start), "err", err)
		return nil, err
	}

	if len(resp.Proof) == 0 {
		return nil, &core.ProofError{Circuit: circuit, Err: errors.New("empty proof")}
	}

	if resp.Address.IsZero() {
		logger.Error("proof carries no address")
		return nil, &core.ProofError{Circuit: circuit, Err: errors.New("prover returned no address")}
	}

	if resp.Address != tx.Sender {
		logger.Error("proof bound to another account", "sender", tx.Sender, "address", resp.Address)

		if circuit == core.CircuitHashWallet {
			return nil, fmt.Errorf("%w: secret belongs to %s, not %s", core.ErrInvalidSecret, resp.Address, tx.Sender)
		}

		return nil, &core.ProofError{
			Circuit: circuit,
			Err:     fmt.Errorf("proof bound to %s, not %s", resp.Address, tx.Sender),
		}
	}

	logger.Info("proof generated", "dur", time.Since(start), "size", len(resp.Proof))

	return &core.Proof{
		Circuit:      circuit,
		Data:         resp.Proof,
		VerifyingKey: resp.VerifyingKey,
		Account:      tx.Sender,
	}, nil
}

// DeriveAccount asks the prover for the account a secret controls.
func (c *coordinator) DeriveAccount(ctx context.Context, secret *core.Secret) (core.Account, error) {
	if secret.IsZero() {
		return core.Account{}, fmt.Errorf("%w: empty secret", core.ErrInvalidSecret)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	account, err := c.backend.Address(ctx, secret)
	if err != nil {
		err = c.mapError(ctx, core.CircuitHashWallet, err)
		c.logger.Error("backend.Address", "err", err)
		return core.Account{}, err
	}

	return account, nil
}

func (c *coordinator) mapError(ctx context.Context, circuit core.Circuit, err error) error {
	var proverErr *core.ProverError
	if errors.As(err, &proverErr) && proverErr.Code == core.ProverCodeInvalidSecret {
		return fmt.Errorf("%w: %s", core.ErrInvalidSecret, proverErr.Message)
	}

	perr := &core.ProofError{Circuit: circuit, Err: err}

	var diag interface{ Diagnostic() string }
	if errors.As(err, &diag) {
		perr.Diagnostic = diag.Diagnostic()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		perr.Timeout = true
		perr.Err = fmt.Errorf("no proof within %s", c.cfg.Timeout)
	} else if errors.Is(err, context.Canceled) {
		return err
	}

	return perr
}
