package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/pandodao/zk-wallet/core"
)

type Config struct {
	Fee             core.Amount
	AllowZeroAmount bool
}

func New(
	ledger core.LedgerService,
	prover core.ProofService,
	logger *slog.Logger,
	cfg Config,
) core.TransferService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &service{
		ledger:    ledger,
		prover:    prover,
		submitter: NewSubmitter(ledger),
		builder: &Builder{
			Fee:             cfg.Fee,
			AllowZeroAmount: cfg.AllowZeroAmount,
		},
		logger: logger.With("service", "transfer"),
	}
}

type service struct {
	ledger    core.LedgerService
	prover    core.ProofService
	submitter *Submitter
	builder   *Builder
	logger    *slog.Logger
}

// Transfer runs fetch, select, build, prove and submit once. The returned
// receipt is never nil; on failure its State is TransferStateFailed and it
// holds whatever was built before the failing stage.
func (s *service) Transfer(ctx context.Context, req *core.TransferRequest) (*core.Receipt, error) {
	defer req.Secret.Wipe()

	logger := s.logger.With("trace", uuid.NewString(), "circuit", req.Circuit())
	receipt := &core.Receipt{State: core.TransferStateIdle}

	fail := func(action string, err error) (*core.Receipt, error) {
		logger.Error(action, "state", receipt.State, "err", err)
		advance(receipt, core.TransferStateFailed)
		return receipt, err
	}

	target, err := s.builder.Target(req.Amount)
	if err != nil {
		return fail("builder.Target", err)
	}

	advance(receipt, core.TransferStateFetchingOutputs)
	outputs, err := s.ledger.ListOutputs(ctx, req.From)
	if err != nil {
		return fail("ledger.ListOutputs", err)
	}

	logger.Debug("outputs loaded", "count", len(outputs))

	advance(receipt, core.TransferStateSelecting)
	selected, change, err := Select(outputs, target)
	if err != nil {
		return fail("Select", err)
	}

	receipt.Selected = selected
	receipt.Change = change

	advance(receipt, core.TransferStateBuilding)
	nonce, err := s.nonce(req)
	if err != nil {
		return fail("nonce", err)
	}

	tx, err := s.builder.Build(nonce, req.From, req.To, req.Amount, selected, change)
	if err != nil {
		return fail("builder.Build", err)
	}

	receipt.Transaction = tx
	logger.Info("transaction built", "inputs", len(tx.Inputs), "outputs", len(tx.Outputs), "change", change.Dec())

	advance(receipt, core.TransferStateProving)
	proof, err := s.prove(ctx, tx, req.Secret)
	req.Secret.Wipe()
	if err != nil {
		return fail("prover.Prove", err)
	}

	receipt.Proof = proof

	advance(receipt, core.TransferStateSubmitting)
	hash, err := s.submitter.Submit(ctx, tx, proof)
	if err != nil {
		return fail("submitter.Submit", err)
	}

	receipt.Hash = hash
	advance(receipt, core.TransferStateSucceeded)
	logger.Info("transaction submitted", "hash", hash)

	return receipt, nil
}

func (s *service) nonce(req *core.TransferRequest) (core.Nonce, error) {
	if req.Nonce != nil {
		return *req.Nonce, nil
	}

	return core.NewNonce()
}

func (s *service) prove(ctx context.Context, tx *core.Transaction, secret *core.Secret) (*core.Proof, error) {
	if secret == nil {
		return s.prover.ProvePermissionless(ctx, tx)
	}

	return s.prover.ProveAuthorized(ctx, tx, secret)
}

func advance(receipt *core.Receipt, next core.TransferState) {
	if !receipt.State.CanTransition(next) {
		panic(fmt.Sprintf("transfer: invalid state transition %s -> %s", receipt.State, next))
	}

	receipt.State = next
}
