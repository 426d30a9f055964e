/*
Copyright © 2024 pando
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/pandodao/zk-wallet/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusOpt struct {
	wait bool
}

var statusCmd = &cobra.Command{
	Use:   "status <tx hash>",
	Short: "show the ledger status of a submitted transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash := args[0]
		if _, err := core.ParseOutputID(hash); err != nil {
			return fmt.Errorf("tx hash: %w", core.ErrInvalidFormat)
		}

		logger := newLogger(cmd)
		ledgerz, err := newLedger(logger)
		if err != nil {
			return err
		}

		var status *core.TransactionStatus
		if statusOpt.wait {
			ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("watch.timeout"))
			defer cancel()

			status, err = newWatcher(ledgerz, logger).Wait(ctx, hash)
		} else {
			status, err = ledgerz.Status(cmd.Context(), hash)
		}

		if err != nil {
			return err
		}

		if rootOpt.json {
			return printJSON(cmd, status)
		}

		printStatus(cmd, status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusOpt.wait, "wait", false, "poll until the transaction is confirmed or rejected")
}

func printStatus(cmd *cobra.Command, status *core.TransactionStatus) {
	c := color.New(color.FgYellow)
	switch status.Status {
	case core.TxStatusConfirmed:
		c = color.New(color.FgGreen)
	case core.TxStatusRejected:
		c = color.New(color.FgRed)
	}

	out := cmd.OutOrStdout()
	_, _ = c.Fprintf(out, "%s %s\n", status.Hash, status.Status)
	if status.Reason != "" {
		fmt.Fprintln(out, "reason:", status.Reason)
	}
}
