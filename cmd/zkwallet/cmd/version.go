/*
Copyright © 2024 pando
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rootOpt.json {
			return printJSON(cmd, map[string]string{"version": version, "commit": commit})
		}

		_, err := fmt.Fprintf(cmd.OutOrStdout(), "zkwallet %s (%s)\n", version, commit)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
