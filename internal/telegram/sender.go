package telegram

import (
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/node-data/ethos-telegram-agent/internal/notify"
)

// sendTimeout bounds a single delivery call so one hung request cannot
// stall a dispatch batch.
const sendTimeout = 10 * time.Second

// Sender adapts the bot API to notify.Sink, translating Telegram error codes
// into tagged delivery outcomes.
type Sender struct {
	bot *tgbotapi.BotAPI
}

func NewSender(bot *tgbotapi.BotAPI) *Sender {
	return &Sender{bot: bot}
}

// NewSendBot returns a bot instance dedicated to outbound delivery, with a
// bounded HTTP client. It must not be shared with the long-polling loop,
// whose GetUpdates calls block for the whole poll window.
func NewSendBot(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint,
		&http.Client{Timeout: sendTimeout})
}

// Send delivers an HTML-formatted message. 403 (user blocked the bot) and
// 400 (chat gone) are permanent: the recipient can never be reached again.
func (s *Sender) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	_, err := s.bot.Send(msg)
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 403 || apiErr.Code == 400) {
		return &notify.SendError{Code: apiErr.Code, Permanent: true, Err: err}
	}
	return &notify.SendError{Err: err}
}
