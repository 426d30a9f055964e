/*
Copyright © 2024 pando
*/
package cmd

import (
	"fmt"

	"github.com/pandodao/generic"
	"github.com/pandodao/zk-wallet/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var balanceCmd = &cobra.Command{
	Use:     "get-balance <account>...",
	Aliases: []string{"balance"},
	Short:   "show the balance of one or more accounts",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := make([]core.Account, len(args))
		for idx, arg := range args {
			account, err := parseAccount("account", arg)
			if err != nil {
				return err
			}

			accounts[idx] = account
		}

		logger := newLogger(cmd)
		ledgerz, err := newLedger(logger)
		if err != nil {
			return err
		}

		balances := make([]*core.Balance, len(accounts))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(viper.GetInt("concurrency"), 1))

		for idx := range accounts {
			g.Go(func() error {
				amount, err := ledgerz.Balance(ctx, accounts[idx])
				if err != nil {
					return fmt.Errorf("balance of %s: %w", accounts[idx], err)
				}

				balances[idx] = &core.Balance{Owner: accounts[idx], Amount: amount}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		if rootOpt.json {
			return printJSON(cmd, generic.MapSlice(balances, viewBalance))
		}

		out := cmd.OutOrStdout()
		for _, b := range balances {
			fmt.Fprintf(out, "%s %s (%s)\n", b.Owner, b.Amount, b.Amount.Dec())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

type balanceView struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
	Decimal string `json:"decimal"`
}

func viewBalance(b *core.Balance) balanceView {
	return balanceView{
		Account: b.Owner.String(),
		Balance: b.Amount.String(),
		Decimal: b.Amount.Dec(),
	}
}
