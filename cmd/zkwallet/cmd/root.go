/*
Copyright © 2024 pando
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/carlmjohnson/versioninfo"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/pandodao/zk-wallet/core"
	"github.com/pandodao/zk-wallet/service/ledger"
	"github.com/pandodao/zk-wallet/service/prover"
	"github.com/pandodao/zk-wallet/service/transfer"
	"github.com/pandodao/zk-wallet/worker/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "0.0.1-src"
	commit  = versioninfo.Short()

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Exit codes by error class.
const (
	exitUnknown   = 1
	exitInput     = 2
	exitTransient = 3
	exitPermanent = 4
)

var rootOpt struct {
	config string
	debug  bool
	json   bool
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "zkwallet",
	Short:         "wallet for a zero-knowledge UTXO ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the command line and exits with a code derived from the
// error class: 2 fix your input, 3 try again later, 4 rejected permanently.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOpt.config, "config", "", "config file (yaml)")
	flags.BoolVar(&rootOpt.debug, "debug", false, "debug logging")
	flags.BoolVar(&rootOpt.json, "json", false, "print results as json")
	flags.StringP("api-url", "l", "", "ledger json-rpc endpoint (env API_HTTP_URL)")
	flags.Duration("timeout", 0, "ledger request timeout")
	flags.Duration("prover-timeout", 0, "proof generation timeout")

	_ = viper.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("ledger.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("prover.timeout", flags.Lookup("prover-timeout"))
	_ = viper.BindEnv("api_url", "API_HTTP_URL", "ZKWALLET_API_URL")

	viper.SetEnvPrefix("zkwallet")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api_url", "http://localhost:8080")
	viper.SetDefault("ledger.timeout", 10*time.Second)
	viper.SetDefault("ledger.retries", 3)
	viper.SetDefault("ledger.retry_wait", 500*time.Millisecond)
	viper.SetDefault("ledger.page_limit", 100)
	viper.SetDefault("ledger.sum_balance", false)
	viper.SetDefault("prover.command", "wallet-prover")
	viper.SetDefault("prover.timeout", 5*time.Minute)
	viper.SetDefault("transfer.allow_zero_amount", false)
	viper.SetDefault("watch.interval", 2*time.Second)
	viper.SetDefault("watch.timeout", 2*time.Minute)
	viper.SetDefault("concurrency", 4)
}

func initConfig() error {
	if rootOpt.config == "" {
		return nil
	}

	viper.SetConfigFile(rootOpt.config)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s failed: %w", rootOpt.config, err)
	}

	return nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if rootOpt.debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func newLedger(logger *slog.Logger) (core.LedgerService, error) {
	endpoint := viper.GetString("api_url")
	if !govalidator.IsRequestURL(endpoint) {
		return nil, fmt.Errorf("api url %q: %w", endpoint, core.ErrInvalidFormat)
	}

	return ledger.New(logger, ledger.Config{
		Endpoint:   endpoint,
		Timeout:    viper.GetDuration("ledger.timeout"),
		Retries:    viper.GetInt("ledger.retries"),
		RetryWait:  viper.GetDuration("ledger.retry_wait"),
		PageLimit:  viper.GetInt("ledger.page_limit"),
		SumBalance: viper.GetBool("ledger.sum_balance"),
	}), nil
}

func newProver(logger *slog.Logger) (core.ProofService, error) {
	var backend core.ProverBackend

	if url := viper.GetString("prover.url"); url != "" {
		if !govalidator.IsRequestURL(url) {
			return nil, fmt.Errorf("prover url %q: %w", url, core.ErrInvalidFormat)
		}

		backend = prover.NewRemote(prover.RemoteConfig{Endpoint: url})
	} else {
		command := viper.GetString("prover.command")
		if command == "" {
			return nil, fmt.Errorf("prover.command or prover.url required: %w", core.ErrInvalidFormat)
		}

		backend = prover.NewExec(prover.ExecConfig{
			Command: command,
			Args:    viper.GetStringSlice("prover.args"),
		})
	}

	timeout := viper.GetDuration("prover.timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("prover.timeout must be positive: %w", core.ErrInvalidFormat)
	}

	return prover.New(backend, logger, prover.Config{Timeout: timeout}), nil
}

func newTransfers(ledgerz core.LedgerService, proverz core.ProofService, logger *slog.Logger) (core.TransferService, error) {
	cfg := transfer.Config{
		AllowZeroAmount: viper.GetBool("transfer.allow_zero_amount"),
	}

	if fee := viper.GetString("transfer.fee"); fee != "" {
		amount, err := core.ParseAmount(fee)
		if err != nil {
			return nil, fmt.Errorf("transfer.fee: %w", err)
		}

		cfg.Fee = amount
	}

	return transfer.New(ledgerz, proverz, logger, cfg), nil
}

func newWatcher(ledgerz core.LedgerService, logger *slog.Logger) *watcher.Watcher {
	interval := viper.GetDuration("watch.interval")
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return watcher.New(ledgerz, logger, watcher.Config{Interval: interval})
}

func exitCode(err error) int {
	switch core.KindOf(err).Class() {
	case core.ClassInput:
		return exitInput
	case core.ClassTransient:
		return exitTransient
	case core.ClassPermanent:
		return exitPermanent
	default:
		return exitUnknown
	}
}

func printError(w io.Writer, err error) {
	kind := core.KindOf(err)

	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprint(w, "Error: ")
	_, _ = fmt.Fprintln(w, err)

	var hint string
	switch kind.Class() {
	case core.ClassInput:
		hint = "fix the request and run it again"
	case core.ClassTransient:
		hint = "try again later"
	case core.ClassPermanent:
		hint = "the ledger refused it, retrying will not help"
	default:
		return
	}

	_, _ = color.New(color.Faint).Fprintf(w, "%s: %s\n", kind, hint)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func parseAccount(flag, s string) (core.Account, error) {
	account, err := core.ParseAccount(s)
	if err != nil {
		return core.Account{}, fmt.Errorf("--%s: %w", flag, err)
	}

	return account, nil
}
