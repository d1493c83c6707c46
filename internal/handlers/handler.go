package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
	"github.com/kivanctezoren/sanalkiwobot/internal/covid"
	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/internal/intent"
	"github.com/kivanctezoren/sanalkiwobot/internal/location"
	"github.com/kivanctezoren/sanalkiwobot/internal/middleware"
	"github.com/kivanctezoren/sanalkiwobot/internal/registry"
	"github.com/kivanctezoren/sanalkiwobot/internal/sender"
	"github.com/kivanctezoren/sanalkiwobot/internal/state"
	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
	"github.com/kivanctezoren/sanalkiwobot/pkg/logger"
)

// Handler dispatches incoming updates to commands, chat-state flows and
// keyword-triggered replies.
type Handler struct {
	config     *config.Config
	sender     sender.Sender
	classifier *intent.Classifier
	resolver   *location.Resolver
	table      *location.Table
	covid      covid.Service
	states     *state.Store
	registry   *registry.Manager
	localizer  *i18n.Localizer
	metrics    *middleware.Metrics
	logger     *logrus.Logger

	botID int64
	lang  string

	whatsUpReplies []string
	coronaClosers  []string
	startText      string
	helpText       string

	rng *rand.Rand
}

// NewHandler creates the update handler. Reply pools and the static command
// texts are loaded from the configured resource directories.
func NewHandler(
	cfg *config.Config,
	snd sender.Sender,
	classifier *intent.Classifier,
	resolver *location.Resolver,
	table *location.Table,
	covidService covid.Service,
	states *state.Store,
	reg *registry.Manager,
	localizer *i18n.Localizer,
	metrics *middleware.Metrics,
	logger *logrus.Logger,
	botID int64,
) (*Handler, error) {
	whatsUpReplies, err := wordset.ReadList(filepath.Join(cfg.Resources.TextListDir, "list_whatsup_reply.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load reply pool: %w", err)
	}
	coronaClosers, err := wordset.ReadList(filepath.Join(cfg.Resources.TextListDir, "list_corona.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to load reply pool: %w", err)
	}

	startText, err := os.ReadFile(filepath.Join(cfg.Resources.MsgTextDir, "msg_start.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to load start text: %w", err)
	}
	helpText, err := os.ReadFile(filepath.Join(cfg.Resources.MsgTextDir, "msg_help.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to load help text: %w", err)
	}

	return &Handler{
		config:         cfg,
		sender:         snd,
		classifier:     classifier,
		resolver:       resolver,
		table:          table,
		covid:          covidService,
		states:         states,
		registry:       reg,
		localizer:      localizer,
		metrics:        metrics,
		logger:         logger,
		botID:          botID,
		lang:           cfg.I18n.DefaultLanguage,
		whatsUpReplies: whatsUpReplies,
		coronaClosers:  coronaClosers,
		startText:      string(startText),
		helpText:       string(helpText),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// HandleUpdate processes one incoming update. Edited messages and non-text
// updates are ignored.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.From == nil || message.Text == "" {
		return nil
	}

	h.metrics.RecordMessageReceived(message.Chat.Type)

	if message.IsCommand() {
		return h.HandleCommand(ctx, message)
	}
	return h.HandleMessage(ctx, message)
}

// HandleCommand processes telegram commands. Every command carries its
// Turkish and English aliases; unknown commands are ignored.
func (h *Handler) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	command := message.Command()
	h.metrics.RecordCommandExecuted(command)

	switch command {
	case "start", "basla", "baslat":
		return h.handleStart(ctx, message)
	case "help", "yardim", "info":
		return h.handleHelp(ctx, message)
	case "corona", "covid", "covid19", "korona":
		return h.handleCoronaCommand(ctx, message)
	case "abonelik", "subscription":
		return h.handleSubscription(ctx, message)
	case "db_backup":
		return h.handleBackup(ctx, message)
	case "duyur", "announce":
		return h.handleAnnounce(ctx, message)
	case "iptal", "abort":
		return h.handleAbort(ctx, message)
	case "duyurusil", "revokeannc":
		return h.handleRevoke(ctx, message)
	default:
		return nil
	}
}

// get renders a localized message in the configured default language.
func (h *Handler) get(messageID string, data map[string]interface{}) string {
	return h.localizer.Get(h.lang, messageID, data)
}

// choose picks one entry of a reply pool.
func (h *Handler) choose(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[h.rng.Intn(len(pool))]
}

// notifyAdmins sends a message to the administrator chats. With groupsOnly
// set, only admin group chats receive it. Group chats are recognized by
// their negative chat IDs; that property is not officially defined and may
// be subject to change.
func (h *Handler) notifyAdmins(ctx context.Context, text string, groupsOnly bool) {
	admins, err := h.registry.Admins().All(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list admin chats")
		return
	}

	for _, id := range admins {
		if groupsOnly && id >= 0 {
			continue
		}
		if _, err := h.sender.Send(ctx, id, text); err != nil {
			logger.WithChat(h.logger, id).WithError(err).Warn("Failed to notify admin chat")
		}
	}
}
