package notify

import (
	"fmt"

	"gap_bot/internal/modules/config"
	"gap_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier — канал событий для человека: постановки, филы, suspension.
// Движок зовёт его синхронно, поэтому реализация обязана не блокировать
// надолго и глотать ошибки доставки.
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram шлёт в один чат из конфига.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(cfg *config.Config) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: cfg.Telegram.ChatID}, nil
}

func (t *Telegram) Send(msg string) {
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) {
	t.Send(fmt.Sprintf(format, args...))
}

// Log — фолбэк без токена: события уходят только в лог.
type Log struct{}

func (Log) Send(msg string) { logger.Info("notify: %s", msg) }

func (l Log) Sendf(format string, args ...any) {
	l.Send(fmt.Sprintf(format, args...))
}

// NewFromConfig — telegram при заданном токене, иначе лог.
func NewFromConfig(cfg *config.Config) (Notifier, error) {
	if cfg.Telegram.Token == "" {
		return Log{}, nil
	}
	return NewTelegram(cfg)
}
