/*
Copyright © 2024 pando
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pandodao/zk-wallet/core"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type transferOptions struct {
	from   string
	to     string
	amount string
	nonce  string
	wait   bool

	secret     string
	secretFile string
}

var (
	transferOpt               transferOptions
	permissionlessTransferOpt transferOptions
)

// transferCmd spends from an account the caller holds the secret for.
var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "transfer from an account you hold the secret for",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := transferOpt.request()
		if err != nil {
			return err
		}

		secret, err := transferOpt.readSecret()
		if err != nil {
			return err
		}

		req.Secret = secret
		return runTransfer(cmd, req, transferOpt.wait)
	},
}

// permissionlessTransferCmd spends from a publicly spendable account.
var permissionlessTransferCmd = &cobra.Command{
	Use:   "transfer-permissionless",
	Short: "transfer from a permissionless account, no secret needed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := permissionlessTransferOpt.request()
		if err != nil {
			return err
		}

		return runTransfer(cmd, req, permissionlessTransferOpt.wait)
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(permissionlessTransferCmd)

	transferOpt.bind(transferCmd.Flags())
	transferCmd.Flags().StringVar(&transferOpt.secret, "secret", "", "sender secret, 64 hex (prefer --secret-file or ZKWALLET_SECRET)")
	transferCmd.Flags().StringVar(&transferOpt.secretFile, "secret-file", "", "file holding the sender secret")

	permissionlessTransferOpt.bind(permissionlessTransferCmd.Flags())
}

func (o *transferOptions) bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.from, "from", "", "sender account, 64 hex")
	flags.StringVar(&o.to, "to", "", "recipient account, 64 hex")
	flags.StringVar(&o.amount, "amount", "", "amount, 64 hex big-endian")
	flags.StringVar(&o.nonce, "nonce", "", "transaction nonce, 64 hex (random when empty)")
	flags.BoolVar(&o.wait, "wait", false, "wait until the ledger confirms or rejects the transaction")
}

func (o *transferOptions) request() (*core.TransferRequest, error) {
	var (
		req = &core.TransferRequest{}
		err error
	)

	if req.From, err = parseAccount("from", o.from); err != nil {
		return nil, err
	}

	if req.To, err = parseAccount("to", o.to); err != nil {
		return nil, err
	}

	if req.Amount, err = core.ParseAmount(o.amount); err != nil {
		return nil, fmt.Errorf("--amount: %w", err)
	}

	if o.nonce != "" {
		nonce, err := core.ParseNonce(o.nonce)
		if err != nil {
			return nil, fmt.Errorf("--nonce: %w", err)
		}

		req.Nonce = &nonce
	}

	return req, nil
}

// readSecret takes the first of --secret, --secret-file and ZKWALLET_SECRET.
func (o *transferOptions) readSecret() (*core.Secret, error) {
	raw := o.secret

	if raw == "" && o.secretFile != "" {
		b, err := os.ReadFile(o.secretFile)
		if err != nil {
			return nil, fmt.Errorf("read secret file failed: %w", err)
		}

		raw = strings.TrimSpace(string(b))
		for i := range b {
			b[i] = 0
		}
	}

	if raw == "" {
		raw = os.Getenv("ZKWALLET_SECRET")
	}

	if raw == "" {
		return nil, fmt.Errorf("%w: secret required, use --secret, --secret-file or ZKWALLET_SECRET", core.ErrInvalidFormat)
	}

	return core.ParseSecret(raw)
}

func runTransfer(cmd *cobra.Command, req *core.TransferRequest, wait bool) error {
	defer req.Secret.Wipe()

	logger := newLogger(cmd)

	ledgerz, err := newLedger(logger)
	if err != nil {
		return err
	}

	proverz, err := newProver(logger)
	if err != nil {
		return err
	}

	transferz, err := newTransfers(ledgerz, proverz, logger)
	if err != nil {
		return err
	}

	receipt, err := transferz.Transfer(cmd.Context(), req)
	if err != nil {
		return err
	}

	if !rootOpt.json {
		out := cmd.OutOrStdout()
		_, _ = color.New(color.FgGreen).Fprintln(out, "transaction submitted")
		fmt.Fprintln(out, "tx hash:", receipt.Hash)
		fmt.Fprintf(out, "inputs:  %d, outputs: %d, change: %s\n",
			len(receipt.Transaction.Inputs), len(receipt.Transaction.Outputs), receipt.Change.Dec())
	}

	var (
		status  *core.TransactionStatus
		waitErr error
	)

	if wait {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("watch.timeout"))
		defer cancel()

		status, waitErr = newWatcher(ledgerz, logger).Wait(ctx, receipt.Hash)
	}

	// the transaction is already submitted, so the receipt is printed even
	// when waiting fails
	if rootOpt.json {
		if err := printJSON(cmd, struct {
			*core.Receipt
			Status *core.TransactionStatus `json:"status,omitempty"`
		}{receipt, status}); err != nil {
			return err
		}
	} else if status != nil {
		printStatus(cmd, status)
	}

	if waitErr != nil {
		return waitErr
	}

	if status != nil && status.Status == core.TxStatusRejected {
		return &core.RejectedError{Reason: status.Reason}
	}

	return nil
}
