// Package devicelock guards screen locking behind an explicit, persisted
// permission grant and reports whether locking is currently possible.
package devicelock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sleepat/internal/process"
	"sleepat/internal/store"
)

const granted = "granted"

// PermissionStore persists the lock permission grant.
type PermissionStore interface {
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

type Manager struct {
	store   PermissionStore
	runner  process.Runner
	command []string
	logger  *slog.Logger
}

func NewManager(store PermissionStore, runner process.Runner, command []string, logger *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		runner:  runner,
		command: command,
		logger:  logger,
	}
}

func (m *Manager) Granted(ctx context.Context) bool {
	value, err := m.store.Setting(ctx, store.KeyLockPermission)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("failed to read lock permission", "error", err)
		}
		return false
	}
	return value == granted
}

// IsActive reports whether the permission is granted and the lock command
// can be found.
func (m *Manager) IsActive(ctx context.Context) bool {
	if len(m.command) == 0 {
		return false
	}
	return m.Granted(ctx) && m.runner.Available(m.command[0])
}

func (m *Manager) RequestPermission(ctx context.Context) error {
	if err := m.store.SetSetting(ctx, store.KeyLockPermission, granted); err != nil {
		return fmt.Errorf("grant lock permission: %w", err)
	}
	m.logger.Info("device lock permission granted")
	return nil
}

func (m *Manager) Revoke(ctx context.Context) error {
	if err := m.store.DeleteSetting(ctx, store.KeyLockPermission); err != nil {
		return fmt.Errorf("revoke lock permission: %w", err)
	}
	m.logger.Info("device lock permission revoked")
	return nil
}

// LockScreen locks the session. Without an active permission it does nothing.
func (m *Manager) LockScreen(ctx context.Context) error {
	if !m.IsActive(ctx) {
		m.logger.Debug("screen lock skipped, permission not active")
		return nil
	}
	if err := m.runner.Run(ctx, m.command); err != nil {
		return fmt.Errorf("lock screen: %w", err)
	}
	m.logger.Info("screen locked")
	return nil
}
