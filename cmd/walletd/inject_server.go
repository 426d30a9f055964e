package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/pandodao/zk-wallet/core"
	"github.com/pandodao/zk-wallet/handler/api"
	"github.com/pandodao/zk-wallet/handler/hc"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

var serverSet = wire.NewSet(
	provideAPIConfig,
	api.New,
	provideServer,
)

func provideAPIConfig(v *viper.Viper) api.Config {
	v.SetDefault("api.max_accounts", 64)
	v.SetDefault("api.concurrency", 8)

	return api.Config{
		MaxAccounts: v.GetInt("api.max_accounts"),
		Concurrency: v.GetInt("api.concurrency"),
	}
}

func provideServer(apiHandler *api.Server, ledgerz core.LedgerService) *http.Server {
	m := chi.NewMux()
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Recoverer)
	m.Use(cors.AllowAll().Handler)

	m.Mount("/api", apiHandler.Handler())
	m.Mount("/hc", hc.Handler(version, func(ctx context.Context) error {
		_, err := ledgerz.Balance(ctx, core.Account{})
		return err
	}))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", opt.port),
		Handler: m,
	}
}
