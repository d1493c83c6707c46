// Package registry persists the durable chat ID sets: known chats,
// administrators and announcement opt-outs. Membership changes are
// idempotent; adding a present member or removing an absent one is a no-op.
package registry

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
)

// Set is one durable chat ID set.
type Set interface {
	Add(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
	Contains(ctx context.Context, id int64) (bool, error)
	All(ctx context.Context) ([]int64, error)
}

// Manager owns the three registries behind a configurable backend.
type Manager struct {
	chats  Set
	admins Set
	optOut Set
	logger *logrus.Logger
}

// NewManager opens the registries using the configured backend type.
func NewManager(cfg *config.RegistryConfig, logger *logrus.Logger) (*Manager, error) {
	open := func(name string) (Set, error) {
		switch cfg.Type {
		case "file":
			return openFileSet(filepath.Join(cfg.Dir, name+".txt"))
		case "redis":
			return openRedisSet(&cfg.Redis, name)
		default:
			return nil, fmt.Errorf("unsupported registry type: %s", cfg.Type)
		}
	}

	m := &Manager{logger: logger}
	var err error
	if m.chats, err = open("chats"); err != nil {
		return nil, err
	}
	if m.admins, err = open("admin_chats"); err != nil {
		return nil, err
	}
	if m.optOut, err = open("annc_blist"); err != nil {
		return nil, err
	}
	return m, nil
}

// Chats is the set of every chat the bot has seen a /start from; it doubles
// as the announcement recipient list.
func (m *Manager) Chats() Set { return m.chats }

// Admins holds the administrator user and group chat IDs. The same set
// authorizes admin-only commands and receives operator notifications.
func (m *Manager) Admins() Set { return m.admins }

// OptOut holds the chats which declined announcements.
func (m *Manager) OptOut() Set { return m.optOut }

// IsAdmin reports whether the user may run administrator commands.
func (m *Manager) IsAdmin(ctx context.Context, userID int64) bool {
	ok, err := m.admins.Contains(ctx, userID)
	if err != nil {
		m.logger.WithError(err).Error("Failed to check admin membership")
		return false
	}
	return ok
}

// Recipients returns the registered chats minus the opt-out set.
func (m *Manager) Recipients(ctx context.Context) ([]int64, error) {
	chats, err := m.chats.All(ctx)
	if err != nil {
		return nil, err
	}

	var r []int64
	for _, id := range chats {
		blocked, err := m.optOut.Contains(ctx, id)
		if err != nil {
			return nil, err
		}
		if !blocked {
			r = append(r, id)
		}
	}
	return r, nil
}
