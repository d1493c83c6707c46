package handlers

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kivanctezoren/sanalkiwobot/internal/covid"
	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/internal/location"
	"github.com/kivanctezoren/sanalkiwobot/internal/text"
)

// Grouped digits, matching the source dataset's own convention.
var statsPrinter = message.NewPrinter(language.English)

// handleCoronaRequest serves a keyword-triggered statistics request. Any
// phrase that neither names a location nor belongs to a trigger set draws a
// warning, but locations found anyway are still served. A fully explained
// message with no location falls back to the default location.
func (h *Handler) handleCoronaRequest(ctx context.Context, msg *tgbotapi.Message, phrases text.Set) error {
	locations, err := h.resolver.Resolve(phrases, h.classifier.ResolutionSeed())
	if err != nil {
		if !errors.Is(err, location.ErrUnrecognizedWords) {
			return err
		}
		if _, err := h.sender.Reply(ctx, msg.Chat.ID, msg.MessageID, h.get(i18n.MsgUnknownWords, nil)); err != nil {
			return err
		}
	}

	if len(locations) == 0 {
		return nil
	}

	h.logger.WithField("locations", locations).Info("Resolved statistics request")

	if _, err := h.sender.Reply(ctx, msg.Chat.ID, msg.MessageID, h.get(i18n.MsgLookingUp, nil)); err != nil {
		return err
	}

	for _, loc := range locations {
		if err := h.reportCovid(ctx, msg, loc); err != nil {
			return err
		}
	}
	return nil
}

// handleCoronaCommand serves the /corona command. An argument is looked up
// as an alias first and as a sheet name second; with no argument the default
// location is served. Extra arguments are ignored.
func (h *Handler) handleCoronaCommand(ctx context.Context, msg *tgbotapi.Message) error {
	loc := h.config.Covid.FallbackLocation

	if args := strings.Fields(msg.CommandArguments()); len(args) > 0 {
		if canonical, ok := h.table.Canonical(text.Fold(args[0])); ok {
			loc = canonical
		} else if candidate := capitalize(args[0]); h.table.IsCanonical(candidate) {
			loc = candidate
		} else {
			_, err := h.sender.Reply(ctx, msg.Chat.ID, msg.MessageID, h.get(i18n.MsgUnknownLocation, nil))
			return err
		}
	}

	return h.reportCovid(ctx, msg, loc)
}

// reportCovid fetches the latest dataset for one canonical location and
// presents it in the chat.
func (h *Handler) reportCovid(ctx context.Context, msg *tgbotapi.Message, loc string) error {
	chatID := msg.Chat.ID

	if !h.table.IsCanonical(loc) {
		h.logger.WithField("location", loc).Error("Statistics lookup called with an unknown location name")
		h.notifyAdmins(ctx, h.get(i18n.MsgOpDatasetBroken, nil), true)
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgBadLocationCall, nil))
		return err
	}

	h.sender.ChatAction(ctx, chatID, tgbotapi.ChatTyping)

	start := time.Now()
	result, err := h.covid.Lookup(ctx, loc, msg.Time())
	if err != nil {
		if errors.Is(err, covid.ErrCorruptDataset) {
			h.logger.WithError(err).Error("Could not parse dataset snapshot")
			h.metrics.RecordCovidLookup("corrupt", time.Since(start))
			h.notifyAdmins(ctx, h.get(i18n.MsgOpDatasetBroken, nil), true)
			_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgDatasetBroken, nil))
			return err
		}

		h.logger.WithError(err).Warn("Dataset source unavailable")
		h.metrics.RecordCovidLookup("unavailable", time.Since(start))
		_, err := h.sender.Reply(ctx, chatID, msg.MessageID, h.get(i18n.MsgSourceGone, nil))
		return err
	}
	h.metrics.RecordCovidLookup("ok", time.Since(start))

	stats := result.Stats
	report := h.get(i18n.MsgStatsReport, map[string]interface{}{
		"Date":      result.Date.Format(covid.DisplayDateLayout),
		"Location":  h.locative(loc),
		"Confirmed": statsPrinter.Sprintf("%d", stats.Confirmed),
		"Active":    statsPrinter.Sprintf("%d", stats.Active),
		"Deaths":    statsPrinter.Sprintf("%d", stats.Deaths),
		"Recovered": statsPrinter.Sprintf("%d", stats.Recovered),
	})

	if stats.Recovered == 0 {
		report += h.get(i18n.MsgNoRecovered, nil)
	}

	report += h.choose(h.coronaClosers)

	if _, err := h.sender.Send(ctx, chatID, report); err != nil {
		return err
	}

	if !stats.Consistent() {
		h.logger.WithField("location", loc).Warn("Statistics did not add up")
		h.notifyAdmins(ctx, h.get(i18n.MsgOpInconsistent, map[string]interface{}{"Location": loc}), true)
		if _, err := h.sender.Send(ctx, chatID, h.get(i18n.MsgInconsistent, map[string]interface{}{
			"Location": h.table.PreferredAlias(loc),
		})); err != nil {
			return err
		}
	}

	return nil
}

// locative renders a canonical location in the Turkish locative case, via
// its preferred alias. "United Kingdom" declines irregularly and is special
// cased.
func (h *Handler) locative(loc string) string {
	if loc == "United Kingdom" {
		return "birleşik krallık'ta"
	}
	return location.Preposition(h.table.PreferredAlias(loc), true)
}

// capitalize uppercases the first rune and folds the rest, mirroring how the
// location sheets capitalize their names.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + text.Fold(s[size:])
}
