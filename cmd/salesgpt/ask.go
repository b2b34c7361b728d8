package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul/salesgpt/internal/tools"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the product knowledge base one question",
	Long: `Ask runs the question through the ProductSearch tool, exactly as the
agent would, and prints the answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := tools.GetTools(a.kb)[0].Call(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
