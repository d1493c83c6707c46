package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/internal/models"
	"github.com/kivanctezoren/sanalkiwobot/internal/state"
	"github.com/kivanctezoren/sanalkiwobot/internal/text"
	"github.com/kivanctezoren/sanalkiwobot/pkg/logger"
)

// Confirmation words accepted in the announcement flow.
var (
	affirmatives = text.NewSet("evet", "yes")
	negatives    = text.NewSet("hayır", "no")
)

// handleAnnounce starts the announcement flow for the chat. Only an
// administrator may start it, but the chat itself need not be an admin chat.
// The remaining steps run through handleAnnounceState.
func (h *Handler) handleAnnounce(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	if !h.registry.IsAdmin(ctx, msg.From.ID) {
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAdminsOnlyStart, nil))
		return err
	}

	if st, ok := h.states.State(chatID); ok {
		id := i18n.MsgOtherConflict
		if state.IsAnnounce(st) {
			id = i18n.MsgAnnounceConflict
		}
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(id, nil))
		return err
	}

	h.states.SetState(chatID, state.AnnounceLv1)

	_, err := h.sender.SendMarkdown(ctx, chatID, h.get(i18n.MsgAnnounceWarning, nil))
	return err
}

// handleAnnounceState consumes a message for a chat holding a conversation
// state. An unknown state is cancelled outright so the chat cannot get
// stuck on it.
func (h *Handler) handleAnnounceState(ctx context.Context, msg *tgbotapi.Message, st, normalized string) error {
	chatID := msg.Chat.ID

	switch st {
	case state.AnnounceLv1:
		// Capture the draft to broadcast.
		if !h.registry.IsAdmin(ctx, msg.From.ID) {
			_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAdminsOnlySend, nil))
			return err
		}

		h.states.SetDraft(chatID, msg.Text)

		if _, err := h.sender.SendMarkdown(ctx, chatID, h.get(i18n.MsgConfirmPrompt, nil)); err != nil {
			return err
		}
		// Echo the draft so the operator confirms exactly what goes out.
		if _, err := h.sender.Send(ctx, chatID, msg.Text); err != nil {
			return err
		}

		h.states.SetState(chatID, state.AnnounceLv2)
		return nil

	case state.AnnounceLv2:
		// Confirm or reject the captured draft.
		if !h.registry.IsAdmin(ctx, msg.From.ID) {
			_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAdminsOnlySend, nil))
			return err
		}

		switch {
		case affirmatives.Contains(normalized):
			if _, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgBroadcastBegin, nil)); err != nil {
				return err
			}
			h.notifyAdmins(ctx, h.get(i18n.MsgOpBroadcastStarted, nil), true)

			if err := h.broadcast(ctx, chatID); err != nil {
				return err
			}

			h.states.ClearDraft(chatID)
			h.states.ClearState(chatID)
			return nil

		case negatives.Contains(normalized):
			h.states.SetState(chatID, state.AnnounceLv1)
			_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAwaitNewDraft, nil))
			return err

		default:
			_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgYesOrNo, nil))
			return err
		}

	default:
		// Should never execute; keep every possible state checked above.
		h.states.ClearState(chatID)
		h.logger.WithField("state", st).Warn("Message received with an unknown chat state, state cancelled")
		h.notifyAdmins(ctx, h.get(i18n.MsgOpUnknownState, map[string]interface{}{"State": st}), true)

		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgUnknownState, nil))
		return err
	}
}

// broadcast sends the chat's confirmed draft to every known chat that has
// not opted out, recording sent message IDs for a later retraction.
func (h *Handler) broadcast(ctx context.Context, chatID int64) error {
	draft, ok := h.states.Draft(chatID)
	if !ok {
		// The draft is set before the chat ever reaches the confirm step.
		h.logger.Error("Broadcast confirmed without a captured draft")
		return nil
	}

	recipients, err := h.registry.Recipients(ctx)
	if err != nil {
		return err
	}

	h.logger.WithField("recipients", len(recipients)).Info("Beginning mass announcement")

	record := make(models.BroadcastRecord, len(recipients))
	for _, id := range recipients {
		messageID, err := h.sender.Send(ctx, id, draft)
		if err != nil {
			h.metrics.RecordBroadcastSend("error")
			logger.WithChat(h.logger, id).WithError(err).Warn("Failed to send announcement")
			continue
		}

		h.metrics.RecordBroadcastSend("ok")
		record[id] = messageID
		h.logger.WithFields(logrus.Fields{
			"chat_id":    id,
			"message_id": messageID,
		}).Info("Announcement sent")
	}

	h.states.SetLastBroadcast(record)
	h.logger.Info("Finished mass announcement")
	return nil
}

// handleAbort cancels the chat's conversation state. Cancelling an
// announcement flow requires an administrator; an unknown state is
// cancelled by anyone since it should not exist at all.
func (h *Handler) handleAbort(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	st, ok := h.states.State(chatID)
	if !ok {
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgNothingToAbort, nil))
		return err
	}

	if state.IsAnnounce(st) {
		if !h.registry.IsAdmin(ctx, msg.From.ID) {
			_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAdminsOnlyAbort, nil))
			return err
		}

		h.states.ClearState(chatID)
		h.states.ClearDraft(chatID)

		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAbortDone, nil))
		return err
	}

	h.states.ClearState(chatID)
	h.logger.WithField("state", st).Warn("Aborted unknown chat state")
	h.notifyAdmins(ctx, h.get(i18n.MsgOpUnknownAborted, map[string]interface{}{"State": st}), true)

	_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAbortUnknown, nil))
	return err
}

// handleRevoke deletes the messages of the latest announcement from every
// recipient. Deletion is best effort; Telegram refuses it for old messages
// and for messages the recipient already removed.
func (h *Handler) handleRevoke(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	if !h.registry.IsAdmin(ctx, msg.From.ID) {
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAdminsOnlyRevoke, nil))
		return err
	}

	record := h.states.LastBroadcast()
	if len(record) == 0 {
		_, err := h.sender.Send(ctx, chatID, h.get(i18n.MsgRevokeEmpty, nil))
		return err
	}

	h.logger.Info("Starting deletion of latest announcement messages")

	if _, err := h.sender.Send(ctx, chatID, h.get(i18n.MsgRevokeStart, nil)); err != nil {
		return err
	}

	allDeleted := true
	for recipient, messageID := range record {
		if err := h.sender.Delete(ctx, recipient, messageID); err != nil {
			h.metrics.RecordBroadcastRetraction("error")
			h.logger.WithError(err).WithFields(logrus.Fields{
				"chat_id":    recipient,
				"message_id": messageID,
			}).Warn("Could not delete announcement message")

			h.notifyAdmins(ctx, h.get(i18n.MsgOpRevokeFailed, map[string]interface{}{
				"MessageID": messageID,
				"ChatID":    recipient,
			}), true)

			allDeleted = false
			continue
		}
		h.metrics.RecordBroadcastRetraction("ok")
	}

	h.states.ClearLastBroadcast()

	id := i18n.MsgRevokePartial
	if allDeleted {
		id = i18n.MsgRevokeAllOK
	}
	_, err := h.sender.Send(ctx, chatID, h.get(id, nil))
	return err
}
