package report

import (
	"context"
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"
)

const telegramTextLimit = 4000

// TelegramSink forwards reports to one Telegram chat.
type TelegramSink struct {
	bot  *tele.Bot
	chat *tele.Chat
	host string
}

func NewTelegramSink(token string, chatID int64, host string) (*TelegramSink, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	// Offline skips getMe at startup; sends still go to the API.
	b, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, err
	}
	return &TelegramSink{bot: b, chat: &tele.Chat{ID: chatID}, host: host}, nil
}

func (t *TelegramSink) Name() string { return "telegram" }

func (t *TelegramSink) Send(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, formatTelegram(t.host, r), &tele.SendOptions{DisableWebPagePreview: true})
	return err
}

func formatTelegram(host string, r Report) string {
	var b strings.Builder
	b.WriteString("commander error")
	if host != "" {
		b.WriteString(" on ")
		b.WriteString(host)
	}
	b.WriteString("\n")
	b.WriteString(r.At.Format("2006-01-02 15:04:05"))
	b.WriteString("\n\n")
	b.WriteString(r.Message)
	s := b.String()
	if len(s) > telegramTextLimit {
		s = s[:telegramTextLimit-3] + "..."
	}
	return s
}
