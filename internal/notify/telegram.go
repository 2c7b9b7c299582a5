package notify

import (
	"context"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/remote"
)

// Telegram pushes short alerts to the club admins' chats. Send-only: the
// bot never polls for updates.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewTelegram(cfg config.Config) (*Telegram, error) {
	b, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	b.Debug = false

	ids := make([]int64, 0, len(cfg.AdminTGIDs))
	for id := range cfg.AdminTGIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return &Telegram{bot: b, chatIDs: ids}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// NotifyAdmins delivers text to every admin chat. One failing chat does
// not stop the rest; the first failure is reported.
func (t *Telegram) NotifyAdmins(ctx context.Context, text string) error {
	var firstErr error
	for i, id := range t.chatIDs {
		if i > 0 {
			time.Sleep(35 * time.Millisecond) // simple anti-flood
		}
		msg := tgbotapi.NewMessage(id, text)
		if _, err := t.bot.Send(msg); err != nil && firstErr == nil {
			firstErr = &remote.Error{Kind: remote.KindNetwork, Service: "telegram", Op: "notify_admins", Err: err}
		}
	}
	return firstErr
}
