/*
Copyright © 2024 pando
*/
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pandodao/zk-wallet/core"
	"github.com/spf13/cobra"
)

// createCmd generates a secret and asks the prover which account it controls.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "create a new account",
	Long:  "Generate a random secret and derive its account. The secret is printed once and never stored.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		proverz, err := newProver(logger)
		if err != nil {
			return err
		}

		secret, err := core.NewSecret()
		if err != nil {
			return err
		}
		defer secret.Wipe()

		account, err := proverz.DeriveAccount(cmd.Context(), secret)
		if err != nil {
			return err
		}

		if rootOpt.json {
			return printJSON(cmd, map[string]string{
				"account": account.String(),
				"secret":  secret.Reveal(),
			})
		}

		out := cmd.OutOrStdout()
		_, _ = color.New(color.FgGreen).Fprintln(out, "account created")
		fmt.Fprintln(out, "account:", account)
		fmt.Fprintln(out, "secret: ", secret.Reveal())
		_, _ = color.New(color.FgYellow).Fprintln(out, "the secret is shown only once, keep it safe")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
