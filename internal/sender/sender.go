// Package sender is the single outbound path to the chat transport. It
// enforces the flood limits (a global per-second budget plus a per-group
// per-minute budget) and exposes only what the core needs: send a text,
// delete a message.
package sender

import (
	"context"
	"fmt"
	"io"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
	"github.com/kivanctezoren/sanalkiwobot/pkg/markdown"
)

// Sender delivers outbound messages. Send returns the delivered message's
// ID so a broadcast can later be retracted.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) (int, error)
	SendMarkdown(ctx context.Context, chatID int64, md string) (int, error)
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	Delete(ctx context.Context, chatID int64, messageID int) error
	ChatAction(ctx context.Context, chatID int64, action string)
	SendDocument(ctx context.Context, chatID int64, name string, r io.Reader) error
}

// Queue implements Sender over the Telegram API with rate limiting.
type Queue struct {
	bot    *tgbotapi.BotAPI
	global *rate.Limiter
	logger *logrus.Logger

	groupRate rate.Limit
	mu        sync.Mutex
	groups    map[int64]*rate.Limiter
}

// NewQueue builds the outbound queue from the rate limit configuration.
func NewQueue(bot *tgbotapi.BotAPI, cfg *config.RateLimitConfig, logger *logrus.Logger) *Queue {
	return &Queue{
		bot:       bot,
		global:    rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), 1),
		groupRate: rate.Limit(cfg.GroupPerMinute / 60.0),
		groups:    make(map[int64]*rate.Limiter),
		logger:    logger,
	}
}

// wait blocks until the chat's budgets allow one more message. Group chats
// carry negative IDs; that property is not officially defined, but it is
// what the per-group budget keys on.
func (q *Queue) wait(ctx context.Context, chatID int64) error {
	if err := q.global.Wait(ctx); err != nil {
		return err
	}
	if chatID >= 0 {
		return nil
	}

	q.mu.Lock()
	limiter, ok := q.groups[chatID]
	if !ok {
		limiter = rate.NewLimiter(q.groupRate, 1)
		q.groups[chatID] = limiter
	}
	q.mu.Unlock()

	return limiter.Wait(ctx)
}

func (q *Queue) send(ctx context.Context, msg tgbotapi.MessageConfig) (int, error) {
	if err := q.wait(ctx, msg.ChatID); err != nil {
		return 0, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	sent, err := q.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

func (q *Queue) Send(ctx context.Context, chatID int64, text string) (int, error) {
	return q.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendMarkdown renders markdown to Telegram HTML before sending, falling
// back to the raw text if the transport rejects the markup.
func (q *Queue) SendMarkdown(ctx context.Context, chatID int64, md string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, markdown.ToTelegramHTML(md))
	msg.ParseMode = tgbotapi.ModeHTML

	id, err := q.send(ctx, msg)
	if err != nil {
		q.logger.WithError(err).Warn("HTML send failed, retrying as plain text")
		return q.send(ctx, tgbotapi.NewMessage(chatID, md))
	}
	return id, nil
}

func (q *Queue) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	return q.send(ctx, msg)
}

func (q *Queue) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := q.wait(ctx, chatID); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}
	if _, err := q.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// ChatAction sends a typing/upload indicator. Failures only get logged;
// the indicator is cosmetic.
func (q *Queue) ChatAction(ctx context.Context, chatID int64, action string) {
	if _, err := q.bot.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		q.logger.WithError(err).Debug("Failed to send chat action")
	}
}

func (q *Queue) SendDocument(ctx context.Context, chatID int64, name string, r io.Reader) error {
	if err := q.wait(ctx, chatID); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: name, Reader: r})
	if _, err := q.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}
