package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/pandodao/generic"
	"github.com/pandodao/zk-wallet/core"
	"github.com/pandodao/zk-wallet/worker/watcher"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	// MaxAccounts bounds a single /balances request.
	MaxAccounts int `valid:"required"`
	// Concurrency bounds the ledger calls made for one request.
	Concurrency int `valid:"required"`
}

func New(
	ledger core.LedgerService,
	watcher *watcher.Watcher,
	logger *slog.Logger,
	cfg Config,
) *Server {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Server{
		ledger:  ledger,
		watcher: watcher,
		logger:  logger.With("server", "api"),
		sf:      &singleflight.Group{},
		cfg:     cfg,
	}
}

// Server is the read-only wallet API. Every request reads the ledger; the
// singleflight group only folds identical requests that are in flight at the
// same time.
type Server struct {
	ledger  core.LedgerService
	watcher *watcher.Watcher
	logger  *slog.Logger
	sf      *singleflight.Group
	cfg     Config
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/accounts/{account}", func(r chi.Router) {
		r.Get("/balance", s.handleBalance)
		r.Get("/utxos", s.handleOutputs)
	})

	r.Get("/balances", s.handleBalances)

	r.Route("/transactions/{hash}", func(r chi.Router) {
		r.Get("/", s.handleStatus)
		r.Post("/watch", s.handleWatch)
	})

	return r
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, err := core.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	balance, err := s.balance(r.Context(), account)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render(w, http.StatusOK, viewBalance(balance))
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query()["account"]
	if len(raw) == 0 || len(raw) > s.cfg.MaxAccounts {
		renderInvalid(w, fmt.Sprintf("between 1 and %d account parameters required", s.cfg.MaxAccounts))
		return
	}

	accounts := make([]core.Account, len(raw))
	for idx, v := range raw {
		account, err := core.ParseAccount(v)
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		accounts[idx] = account
	}

	balances := make([]*core.Balance, len(accounts))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.cfg.Concurrency)

	for idx := range accounts {
		g.Go(func() error {
			balance, err := s.balance(ctx, accounts[idx])
			if err != nil {
				return err
			}

			balances[idx] = balance
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.renderError(w, r, err)
		return
	}

	render(w, http.StatusOK, generic.MapSlice(balances, viewBalance))
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	account, err := core.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	outputs, err := s.outputs(r.Context(), account)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	total, err := core.SumOutputs(outputs)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render(w, http.StatusOK, OutputList{
		Owner:   account.String(),
		Outputs: generic.MapSlice(outputs, viewOutput),
		Total:   total.String(),
		Count:   len(outputs),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if !isHash(hash) {
		s.renderError(w, r, core.ErrInvalidFormat)
		return
	}

	status, err := s.ledger.Status(r.Context(), hash)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render(w, http.StatusOK, status)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if !isHash(hash) {
		s.renderError(w, r, core.ErrInvalidFormat)
		return
	}

	added := s.watcher.Watch(hash)
	render(w, http.StatusAccepted, map[string]any{
		"tx_hash": hash,
		"added":   added,
	})
}

func (s *Server) balance(ctx context.Context, account core.Account) (*core.Balance, error) {
	v, err, _ := s.sf.Do("balance:"+account.String(), func() (any, error) {
		amount, err := s.ledger.Balance(shared(ctx), account)
		if err != nil {
			return nil, err
		}

		return &core.Balance{Owner: account, Amount: amount}, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Balance), nil
}

func (s *Server) outputs(ctx context.Context, account core.Account) ([]*core.Output, error) {
	v, err, _ := s.sf.Do("outputs:"+account.String(), func() (any, error) {
		return s.ledger.ListOutputs(shared(ctx), account)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*core.Output), nil
}

// shared detaches a folded call from the caller that started it, so one
// client going away does not fail the others. The ledger client timeout still
// bounds it.
func shared(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.Canceled):
		// client went away
		return
	case kind.Class() == core.ClassInput:
		status = http.StatusBadRequest
	case kind == core.KindNetwork, kind == core.KindLedger:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "kind", kind, "err", err)
	}

	render(w, status, ErrorView{Error: ErrorBody{
		Kind:    kind.String(),
		Class:   kind.Class().String(),
		Message: err.Error(),
	}})
}

func render(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func renderInvalid(w http.ResponseWriter, msg string) {
	render(w, http.StatusBadRequest, ErrorView{Error: ErrorBody{
		Kind:    core.KindInvalidFormat.String(),
		Class:   core.ClassInput.String(),
		Message: msg,
	}})
}

func isHash(s string) bool {
	return len(s) == 64 && govalidator.IsHexadecimal(s)
}
