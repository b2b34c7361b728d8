package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/rahul/salesgpt/internal/agent"
	"github.com/rahul/salesgpt/internal/observability"
)

const (
	telegramGreeting = "Hi! Ask me anything about our products."
	telegramReset    = "Conversation cleared. How can I help?"
	telegramTrouble  = "Sorry, I'm having trouble answering right now. Please try again in a moment."
)

// TelegramGateway runs one agent turn per incoming chat message.
type TelegramGateway struct {
	Bot   *tgbotapi.BotAPI
	Brain agent.Brain
}

var _ Messenger = (*TelegramGateway)(nil)

func NewTelegramGateway(token string, brain agent.Brain) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting telegram bot: %w", err)
	}

	log.Info().Str("account", bot.Self.UserName).Msg("telegram bot authorized")

	return &TelegramGateway{Bot: bot, Brain: brain}, nil
}

// Start handles updates until ctx ends or Stop is called.
func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			tg.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
			reply := tg.Reply(ctx, chatID, update.Message.Text)
			if err := tg.Send(chatID, reply); err != nil {
				log.Error().Err(err).Str("chat_id", chatID).Msg("failed to send telegram reply")
			}
		}
	}
}

// Reply computes the bot's answer to text, handling /start and /reset.
func (tg *TelegramGateway) Reply(ctx context.Context, chatID, text string) string {
	text = strings.TrimSpace(text)
	log.Debug().Str("chat_id", chatID).Str("text", text).Msg("telegram message")

	switch text {
	case "":
		return telegramGreeting
	case "/start":
		return telegramGreeting
	case "/reset":
		if rs, ok := tg.Brain.(Resetter); ok {
			if err := rs.Reset(ctx, chatID); err != nil {
				log.Error().Err(err).Str("chat_id", chatID).Msg("failed to clear history")
				return telegramTrouble
			}
		}
		return telegramReset
	}

	response, err := tg.Brain.Think(ctx, chatID, text)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("agent turn failed")
		return telegramTrouble
	}
	observability.RecordRequest()
	return response
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	_, err = tg.Bot.Send(tgbotapi.NewMessage(id, text))
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
