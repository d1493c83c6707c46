package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/internal/intent"
	"github.com/kivanctezoren/sanalkiwobot/internal/text"
)

// HandleMessage dispatches a non-command text message. A chat holding a
// conversation state consumes the message first; otherwise the message's
// phrase set is matched against the trigger categories. Categories fire
// independently, so one message can draw several replies in a fixed order.
func (h *Handler) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	tokens, emojis := text.Normalize(message.Text)
	normalized := strings.Join(tokens, " ")
	phrases := text.Phrases(tokens)
	for _, e := range emojis {
		phrases.Add(e)
	}

	chatID := message.Chat.ID

	if st, ok := h.states.State(chatID); ok {
		h.logger.WithField("state", st).Info("Detected chat state")
		return h.handleAnnounceState(ctx, message, st, normalized)
	}

	result := h.classifier.Classify(phrases, normalized, intent.Context{
		Private:    message.Chat.IsPrivate(),
		ReplyToBot: message.ReplyToMessage != nil && message.ReplyToMessage.From != nil && message.ReplyToMessage.From.ID == h.botID,
	})

	if result.Greet {
		h.metrics.RecordIntentMatched("greet")
		if err := h.replyGreeting(ctx, message); err != nil {
			return err
		}
	}

	if result.WhatsUp {
		h.metrics.RecordIntentMatched("whatsup")
		if _, err := h.sender.Reply(ctx, chatID, message.MessageID, h.choose(h.whatsUpReplies)); err != nil {
			return err
		}
	}

	if result.StatsRequest {
		h.metrics.RecordIntentMatched("stats_request")
		return h.handleCoronaRequest(ctx, message, phrases)
	}

	return nil
}

// replyGreeting answers a greeting with the sender's folded first name.
// A few specific accounts get an easter egg instead.
func (h *Handler) replyGreeting(ctx context.Context, message *tgbotapi.Message) error {
	var reply string
	if message.From.UserName == "kivanct" {
		reply = h.get(i18n.MsgGreetEasterEgg, nil)
	} else {
		// The username may be empty but a first name always exists.
		reply = h.get(i18n.MsgGreet, map[string]interface{}{
			"Name": text.Fold(message.From.FirstName),
		})
	}

	_, err := h.sender.Reply(ctx, message.Chat.ID, message.MessageID, reply)
	return err
}
