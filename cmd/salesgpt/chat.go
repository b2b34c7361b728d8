package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul/salesgpt/internal/agent"
	"github.com/rahul/salesgpt/internal/gateway"
	"github.com/rahul/salesgpt/internal/observability"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the sales agent on the terminal",
	Long: `Chat starts an interactive conversation with the sales agent. The agent
looks up product details with the ProductSearch tool. Type /reset to start
over and /quit (or Ctrl-D) to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	chatID, _ := cmd.Flags().GetString("chat-id")

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	observability.PrintBanner(out, observability.GetStatus())
	return chatLoop(ctx, a.agent, chatID, cmd.InOrStdin(), out)
}

// chatLoop reads one message per line until EOF, /quit or ctx ends.
func chatLoop(ctx context.Context, brain agent.Brain, chatID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if rs, ok := brain.(gateway.Resetter); ok {
				if err := rs.Reset(ctx, chatID); err != nil {
					return err
				}
			}
			fmt.Fprintln(out, "(conversation cleared)")
			continue
		}

		reply, err := brain.Think(ctx, chatID, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		observability.RecordRequest()
		fmt.Fprintf(out, "agent> %s\n", reply)
	}
}

func init() {
	chatCmd.Flags().String("chat-id", "cli", "conversation id used for history")
	rootCmd.AddCommand(chatCmd)
}
