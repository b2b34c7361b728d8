package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul/salesgpt/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tools the sales agent is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := tools.NewRegistry()
		tools.RegisterSalesTools(registry, nil)

		out := cmd.OutOrStdout()
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(registry.Definitions())
		}
		for _, t := range registry.List() {
			fmt.Fprintf(out, "%s: %s\n", t.Name(), t.Description())
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of salesgpt",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "salesgpt %s\n", version)
	},
}

func init() {
	toolsCmd.Flags().Bool("json", false, "print function-calling definitions as JSON")
	rootCmd.AddCommand(toolsCmd, versionCmd)
}
