package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/pkg/logger"
)

// handleStart registers the chat for announcements and sends the intro text.
func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if h.registerChat(ctx, msg.Chat.ID) {
		// Manual backup of the updated chat data. Change if it becomes too
		// overwhelming.
		if err := h.backupToAdmins(ctx); err != nil {
			h.logger.WithError(err).Error("Failed to back up chat data")
		}
	}

	_, err := h.sender.SendMarkdown(ctx, msg.Chat.ID, h.startText)
	return err
}

// handleHelp sends the capabilities text.
func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) error {
	_, err := h.sender.SendMarkdown(ctx, msg.Chat.ID, h.helpText)
	return err
}

// handleSubscription toggles the chat's announcement subscription. Chats
// that wish not to receive announcements are kept on an opt-out list, so a
// chat is subscribed by default.
func (h *Handler) handleSubscription(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	h.registerChat(ctx, chatID)

	optedOut, err := h.registry.OptOut().Contains(ctx, chatID)
	if err != nil {
		return err
	}

	var id string
	if optedOut {
		if err := h.registry.OptOut().Remove(ctx, chatID); err != nil {
			h.metrics.RecordRegistryOperation("opt_in", "error")
			return err
		}
		h.metrics.RecordRegistryOperation("opt_in", "ok")
		id = i18n.MsgSubscribed
	} else {
		if err := h.registry.OptOut().Add(ctx, chatID); err != nil {
			h.metrics.RecordRegistryOperation("opt_out", "error")
			return err
		}
		h.metrics.RecordRegistryOperation("opt_out", "ok")
		id = i18n.MsgUnsubscribed
	}

	if _, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(id, nil)); err != nil {
		return err
	}

	// Manual backup of the updated chat data. Change if it becomes too
	// overwhelming.
	return h.backupToAdmins(ctx)
}

// registerChat adds the chat to the known-chats registry. Reports whether
// the chat was new.
func (h *Handler) registerChat(ctx context.Context, chatID int64) bool {
	known, err := h.registry.Chats().Contains(ctx, chatID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check chat registration")
		return false
	}
	if known {
		return false
	}

	if err := h.registry.Chats().Add(ctx, chatID); err != nil {
		h.metrics.RecordRegistryOperation("add_chat", "error")
		logger.WithChat(h.logger, chatID).WithError(err).Error("Failed to register chat")
		return false
	}
	h.metrics.RecordRegistryOperation("add_chat", "ok")
	logger.WithChat(h.logger, chatID).Info("Registered new chat")
	return true
}

// handleBackup serves the /db_backup command: a zip of the chat data
// directory, sent to the invoking admin chat only.
func (h *Handler) handleBackup(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	isAdminChat, err := h.registry.Admins().Contains(ctx, chatID)
	if err != nil {
		return err
	}
	if !isAdminChat {
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgAdminsOnlyChats, nil))
		return err
	}

	name, archive, err := h.backupArchive()
	if err != nil {
		return err
	}

	h.sender.ChatAction(ctx, chatID, tgbotapi.ChatUploadDocument)
	return h.sender.SendDocument(ctx, chatID, name, archive)
}

// backupToAdmins sends a fresh chat data backup to the admin group chats.
// Called by the bot itself after registry changes.
func (h *Handler) backupToAdmins(ctx context.Context) error {
	name, archive, err := h.backupArchive()
	if err != nil {
		return err
	}

	admins, err := h.registry.Admins().All(ctx)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(archive)
	if err != nil {
		return err
	}

	for _, id := range admins {
		// Group chats only, recognized by their negative chat IDs.
		if id >= 0 {
			continue
		}
		if err := h.sender.SendDocument(ctx, id, name, bytes.NewReader(data)); err != nil {
			logger.WithChat(h.logger, id).WithError(err).Warn("Failed to send backup archive")
		}
	}
	return nil
}

// backupArchive zips the chat data directory in memory.
func (h *Handler) backupArchive() (string, io.Reader, error) {
	dir := h.config.Resources.ChatDataDir
	name := fmt.Sprintf("chat_data_%s.zip", time.Now().Format("2006-01-02_15-04-05"))

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		w.Close()
		return "", nil, fmt.Errorf("failed to archive chat data: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to finish chat data archive: %w", err)
	}

	h.logger.WithField("archive", name).Info("Created chat data backup archive")
	return name, &buf, nil
}
