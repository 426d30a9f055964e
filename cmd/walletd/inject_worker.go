package main

import (
	"time"

	"github.com/google/wire"
	"github.com/pandodao/zk-wallet/worker/watcher"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	provideWatcherConfig,
	watcher.New,
)

func provideWatcherConfig(v *viper.Viper) watcher.Config {
	v.SetDefault("watch.interval", 2*time.Second)

	return watcher.Config{
		Interval: v.GetDuration("watch.interval"),
	}
}
