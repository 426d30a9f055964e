package main

import (
	"time"

	"github.com/google/wire"
	"github.com/pandodao/zk-wallet/service/ledger"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideLedgerConfig,
	ledger.New,
)

func provideLedgerConfig(v *viper.Viper) ledger.Config {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("ledger.timeout", 10*time.Second)
	v.SetDefault("ledger.retries", 3)
	v.SetDefault("ledger.retry_wait", 500*time.Millisecond)
	v.SetDefault("ledger.page_limit", 100)

	return ledger.Config{
		Endpoint:   v.GetString("api_url"),
		Timeout:    v.GetDuration("ledger.timeout"),
		Retries:    v.GetInt("ledger.retries"),
		RetryWait:  v.GetDuration("ledger.retry_wait"),
		PageLimit:  v.GetInt("ledger.page_limit"),
		SumBalance: v.GetBool("ledger.sum_balance"),
	}
}
