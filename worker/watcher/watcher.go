package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zk-wallet/core"
	"github.com/zyedidia/generic/mapset"
)

type Config struct {
	Interval time.Duration `valid:"required"`
}

func New(
	ledger core.LedgerService,
	logger *slog.Logger,
	cfg Config,
) *Watcher {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Watcher{
		ledger:  ledger,
		logger:  logger.With("worker", "watcher"),
		cfg:     cfg,
		pending: mapset.New[string](),
	}
}

// Watcher follows submitted transactions until the ledger reports a final
// status.
type Watcher struct {
	ledger core.LedgerService
	logger *slog.Logger
	cfg    Config

	mux     sync.Mutex
	pending mapset.Set[string]
}

// Wait polls hash until it is confirmed or rejected. Network errors are
// logged and polled through; any other error ends the wait.
func (w *Watcher) Wait(ctx context.Context, hash string) (*core.TransactionStatus, error) {
	logger := w.logger.With("tx", hash)

	var last core.TxStatus
	for {
		status, err := w.ledger.Status(ctx, hash)
		switch {
		case err == nil:
			if status.Status != last {
				logger.Info("status changed", "status", status.Status)
				last = status.Status
			}

			if status.Status.Final() {
				return status, nil
			}
		case isNetwork(err):
			logger.Warn("ledger.Status", "err", err)
		default:
			logger.Error("ledger.Status", "err", err)
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", hash, ctx.Err())
		case <-time.After(w.cfg.Interval):
		}
	}
}

// Watch queues hash for the Run loop. It reports false when the hash is
// already queued.
func (w *Watcher) Watch(hash string) bool {
	w.mux.Lock()
	defer w.mux.Unlock()

	if w.pending.Has(hash) {
		return false
	}

	w.pending.Put(hash)
	return true
}

func (w *Watcher) Pending() []string {
	w.mux.Lock()
	defer w.mux.Unlock()

	hashes := make([]string, 0, w.pending.Size())
	w.pending.Each(func(hash string) {
		hashes = append(hashes, hash)
	})

	return hashes
}

func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher start")

	for {
		dur := w.cfg.Interval
		if w.run(ctx) != nil {
			dur = 2 * w.cfg.Interval
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

func (w *Watcher) run(ctx context.Context) error {
	var errs []error

	for _, hash := range w.Pending() {
		status, err := w.ledger.Status(ctx, hash)
		if err != nil {
			w.logger.Error("ledger.Status", "tx", hash, "err", err)
			errs = append(errs, err)
			continue
		}

		if !status.Status.Final() {
			continue
		}

		w.logger.Info("transaction final", "tx", hash, "status", status.Status, "reason", status.Reason)

		w.mux.Lock()
		w.pending.Remove(hash)
		w.mux.Unlock()
	}

	return errors.Join(errs...)
}

func isNetwork(err error) bool {
	var network *core.NetworkError
	return errors.As(err, &network)
}
