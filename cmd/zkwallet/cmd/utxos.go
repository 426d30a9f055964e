/*
Copyright © 2024 pando
*/
package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pandodao/generic"
	"github.com/pandodao/zk-wallet/core"
	"github.com/spf13/cobra"
)

var utxosCmd = &cobra.Command{
	Use:     "list-utxos <account>",
	Aliases: []string{"utxos"},
	Short:   "list the unspent outputs of an account",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := parseAccount("account", args[0])
		if err != nil {
			return err
		}

		logger := newLogger(cmd)
		ledgerz, err := newLedger(logger)
		if err != nil {
			return err
		}

		outputs, err := ledgerz.ListOutputs(cmd.Context(), account)
		if err != nil {
			return err
		}

		total, err := core.SumOutputs(outputs)
		if err != nil {
			return err
		}

		if rootOpt.json {
			return printJSON(cmd, outputListView{
				Account: account.String(),
				Outputs: generic.MapSlice(outputs, viewOutput),
				Total:   total.String(),
				Count:   len(outputs),
			})
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"#", "ID", "Amount", "Decimal"})
		table.SetAutoWrapText(false)
		table.SetBorder(false)

		for idx, output := range outputs {
			table.Append([]string{
				strconv.Itoa(idx + 1),
				output.ID.String(),
				output.Amount.String(),
				output.Amount.Dec(),
			})
		}

		table.SetFooter([]string{"", "total " + strconv.Itoa(len(outputs)), total.String(), total.Dec()})
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(utxosCmd)
}

type outputView struct {
	ID      string `json:"id"`
	Amount  string `json:"amount"`
	Decimal string `json:"decimal"`
}

type outputListView struct {
	Account string       `json:"account"`
	Outputs []outputView `json:"utxos"`
	Total   string       `json:"total"`
	Count   int          `json:"count"`
}

func viewOutput(o *core.Output) outputView {
	return outputView{
		ID:      o.ID.String(),
		Amount:  o.Amount.String(),
		Decimal: o.Amount.Dec(),
	}
}
