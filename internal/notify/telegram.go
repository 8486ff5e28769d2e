package notify

import (
	"context"
	"os"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Environment variables consulted when token or chat id were not passed to
// NewTelegram.
const (
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

// Telegram sends messages through a Telegram bot.
type Telegram struct {
	token  string
	chatID int64
	logger zerolog.Logger

	mu     sync.Mutex
	bot    *tgbotapi.BotAPI
	newBot func(token string) (*tgbotapi.BotAPI, error)
}

// NewTelegram creates a new Telegram service. Zero values defer resolution to
// TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID at send time.
func NewTelegram(token string, chatID int64, logger *zerolog.Logger) *Telegram {
	return &Telegram{
		token:  token,
		chatID: chatID,
		logger: logger.With().Str("component", "telegram_service").Logger(),
		newBot: tgbotapi.NewBotAPI,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Send implements the Service interface for Telegram. The bot API client is
// created on first use since NewBotAPI performs a network call.
func (t *Telegram) Send(_ context.Context, message string) error {
	token := t.token
	if token == "" {
		token = os.Getenv(EnvTelegramToken)
	}
	chatID := t.chatID
	if chatID == 0 {
		if v := os.Getenv(EnvTelegramChatID); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				chatID = id
			}
		}
	}
	if token == "" || chatID == 0 {
		return &ConfigError{
			Service: t.Name(),
			Reason:  "bot token and chat id must be provided or set in " + EnvTelegramToken + " and " + EnvTelegramChatID,
		}
	}

	bot, err := t.botFor(token)
	if err != nil {
		return &DeliveryError{Service: t.Name(), Err: err}
	}

	if _, err := bot.Send(tgbotapi.NewMessage(chatID, message)); err != nil {
		return &DeliveryError{Service: t.Name(), Err: err}
	}

	t.logger.Info().Int64("chat_id", chatID).Msg("telegram notification delivered")
	return nil
}

// botFor returns the cached bot client, creating it on first use. The mutex
// keeps the lazy init safe for concurrent Send calls.
func (t *Telegram) botFor(token string) (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot == nil {
		b, err := t.newBot(token)
		if err != nil {
			return nil, err
		}
		t.bot = b
	}
	return t.bot, nil
}
