package session

import (
	"context"
	"sync"
	"time"
)

// Manager serializes interactive gacha flows per user at the command layer.
// The database transactions below it are already safe; this layer exists so a
// user cannot stack two interactive multi-roll or trade prompts at once.
type Manager struct {
	activeSessions sync.Map
	sessionLocks   sync.Map
	messageOwners  sync.Map
	lockDuration   time.Duration
	sessionTimeout time.Duration
}

func NewManager() *Manager {
	return &Manager{
		lockDuration:   30 * time.Second,
		sessionTimeout: 30 * time.Second,
	}
}

func (m *Manager) HasActiveSession(userID string) bool {
	_, exists := m.activeSessions.Load(userID)
	return exists
}

// Lock opens a session for the user. Returns false if one is already open.
func (m *Manager) Lock(userID string) bool {
	if m.HasActiveSession(userID) {
		return false
	}

	if _, loaded := m.activeSessions.LoadOrStore(userID, time.Now()); loaded {
		return false
	}

	m.sessionLocks.Store(userID, time.Now().Add(m.lockDuration))
	return true
}

func (m *Manager) Release(userID string) {
	m.sessionLocks.Delete(userID)
	m.activeSessions.Delete(userID)
	m.messageOwners.Range(func(key, value interface{}) bool {
		if value.(string) == userID {
			m.messageOwners.Delete(key)
		}
		return true
	})
}

// RegisterMessageOwner ties an interactive message to the user who opened it,
// so component interactions from bystanders can be ignored.
func (m *Manager) RegisterMessageOwner(messageID string, userID string) {
	m.messageOwners.Store(messageID, userID)
}

func (m *Manager) IsMessageOwner(messageID string, userID string) bool {
	if owner, exists := m.messageOwners.Load(messageID); exists {
		return owner.(string) == userID
	}
	return false
}

func (m *Manager) cleanupExpired() {
	now := time.Now()

	m.sessionLocks.Range(func(key, value interface{}) bool {
		if now.After(value.(time.Time)) {
			m.sessionLocks.Delete(key)
			m.activeSessions.Delete(key)
		}
		return true
	})

	m.activeSessions.Range(func(key, value interface{}) bool {
		if now.Sub(value.(time.Time)) > m.sessionTimeout {
			m.activeSessions.Delete(key)
			m.sessionLocks.Delete(key)
		}
		return true
	})

	m.messageOwners.Range(func(key, value interface{}) bool {
		if _, exists := m.activeSessions.Load(value.(string)); !exists {
			m.messageOwners.Delete(key)
		}
		return true
	})
}

func (m *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.cleanupExpired()
			}
		}
	}()
}
