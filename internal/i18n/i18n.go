// Package i18n holds every fixed user-facing reply text, keyed by message
// ID. Turkish is the default and currently only catalog.
package i18n

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
)

// Localizer resolves message IDs to reply texts.
type Localizer struct {
	bundle          *i18n.Bundle
	defaultLanguage string
	localizers      map[string]*i18n.Localizer
}

// NewLocalizer loads the configured language catalogs.
func NewLocalizer(cfg *config.I18nConfig) (*Localizer, error) {
	bundle := i18n.NewBundle(language.Turkish)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range cfg.Languages {
		if _, err := bundle.LoadMessageFile(filepath.Join(cfg.Dir, lang+".json")); err != nil {
			return nil, fmt.Errorf("failed to load language file %s: %w", lang, err)
		}
	}

	localizers := make(map[string]*i18n.Localizer)
	for _, lang := range cfg.Languages {
		localizers[lang] = i18n.NewLocalizer(bundle, lang)
	}

	return &Localizer{
		bundle:          bundle,
		defaultLanguage: cfg.DefaultLanguage,
		localizers:      localizers,
	}, nil
}

// Get returns the localized message for an ID, falling back to the default
// language and finally to the ID itself.
func (l *Localizer) Get(lang, messageID string, data map[string]interface{}) string {
	localizer, exists := l.localizers[lang]
	if !exists {
		localizer = l.localizers[l.defaultLanguage]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}

	return msg
}

// Message IDs
const (
	MsgGreet            = "greet"
	MsgGreetEasterEgg   = "greet_easter_egg"
	MsgLookingUp        = "looking_up"
	MsgUnknownWords     = "unknown_words"
	MsgUnknownLocation  = "unknown_location"
	MsgSourceGone       = "source_gone"
	MsgDatasetBroken    = "dataset_broken"
	MsgBadLocationCall  = "bad_location_call"
	MsgStatsReport      = "stats_report"
	MsgNoRecovered      = "no_recovered"
	MsgInconsistent     = "inconsistent"
	MsgAdminsOnlySend   = "admins_only_send"
	MsgAdminsOnlyStart  = "admins_only_start"
	MsgAdminsOnlyRevoke = "admins_only_revoke"
	MsgAdminsOnlyAbort  = "admins_only_abort"
	MsgAdminsOnlyChats  = "admins_only_chats"
	MsgAnnounceConflict = "announce_conflict"
	MsgOtherConflict    = "other_conflict"
	MsgAnnounceWarning  = "announce_warning"
	MsgConfirmPrompt    = "confirm_prompt"
	MsgBroadcastBegin   = "broadcast_begin"
	MsgAwaitNewDraft    = "await_new_draft"
	MsgYesOrNo          = "yes_or_no"
	MsgUnknownState     = "unknown_state"
	MsgAbortDone        = "abort_done"
	MsgAbortUnknown     = "abort_unknown"
	MsgNothingToAbort   = "nothing_to_abort"
	MsgRevokeEmpty      = "revoke_empty"
	MsgRevokeStart      = "revoke_start"
	MsgRevokeAllOK      = "revoke_all_ok"
	MsgRevokePartial    = "revoke_partial"
	MsgSubscribed       = "subscribed"
	MsgUnsubscribed     = "unsubscribed"
)

// Operator notification IDs
const (
	MsgOpBroadcastStarted = "op_broadcast_started"
	MsgOpUnknownState     = "op_unknown_state"
	MsgOpUnknownAborted   = "op_unknown_aborted"
	MsgOpDatasetBroken    = "op_dataset_broken"
	MsgOpInconsistent     = "op_inconsistent"
	MsgOpRevokeFailed     = "op_revoke_failed"
)
