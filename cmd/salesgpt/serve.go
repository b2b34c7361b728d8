package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rahul/salesgpt/internal/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and, when configured, the Telegram bot",
	Long: `Serve exposes the knowledge base and the sales agent:

  GET    /health
  POST   /api/v1/ask        {"question": "..."}
  POST   /api/v1/chat       {"chat_id": "...", "message": "..."}
  DELETE /api/v1/chat/{id}
  GET    /api/v1/tools

The Telegram bot starts when gateways.telegram is enabled with a token.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, a.agent)
		if err != nil {
			return err
		}
		go func() {
			if err := tg.Start(ctx); err != nil {
				log.Error().Err(err).Msg("telegram gateway stopped")
				stop()
			}
		}()
	}

	srv := gateway.NewHTTPServer(cfg.HTTP.Addr, &gateway.API{
		KB:                 a.kb,
		Brain:              a.agent,
		Registry:           a.registry,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		TrustProxy:         cfg.HTTP.TrustProxy,
	})
	return srv.Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides http.addr)")
	rootCmd.AddCommand(serveCmd)
}
