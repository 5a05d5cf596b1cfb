package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier delivers short reminder messages
type Notifier interface {
	Notify(ctx context.Context, title, text string) error
}

// TelegramNotifier sends messages to a single chat through the Bot API
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier connects to the Bot API with token
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram notifier initialized", zap.String("bot", botAPI.Self.UserName))

	return &TelegramNotifier{
		bot:    botAPI,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Notify sends title and text as one HTML message
func (n *TelegramNotifier) Notify(ctx context.Context, title, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatHTML(title, text))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Debug("Telegram message sent", zap.String("title", title))
	return nil
}

// LogNotifier writes reminders to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message at info level
func (n *LogNotifier) Notify(ctx context.Context, title, text string) error {
	n.logger.Info("Reminder", zap.String("title", title), zap.String("text", text))
	return nil
}

// FormatHTML renders a bold title above the text
func FormatHTML(title, text string) string {
	if title == "" {
		return text
	}
	return fmt.Sprintf("<b>%s</b>\n\n%s", title, text)
}
