// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// outboxSize is the per-session message buffer. When a client reads too
// slowly and the buffer fills, further messages are dropped rather than
// stalling the world.
const outboxSize = 100

// Session is a user's live connection to the game. Outbox carries
// rendered lines from the world to the connection's writer goroutine.
type Session struct {
	UserID      ulid.ULID
	ConnID      ulid.ULID
	Outbox      chan string
	ConnectedAt time.Time
}

// SessionManager tracks the single live session per user. It implements
// world.Notifier: delivery is a non-blocking enqueue onto the session's
// outbox, so broadcast never waits on a slow client.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[ulid.ULID]*Session // keyed by UserID
	onDrop   func(userID ulid.ULID)
}

// NewSessionManager creates a session manager. onDrop, if non-nil, is
// called whenever a message is discarded because a session's outbox is
// full.
func NewSessionManager(onDrop func(userID ulid.ULID)) *SessionManager {
	return &SessionManager{
		sessions: make(map[ulid.ULID]*Session),
		onDrop:   onDrop,
	}
}

// Connect registers a session for the user, replacing any existing one.
// The replaced session's outbox is closed so its writer goroutine
// drains and exits.
func (sm *SessionManager) Connect(userID, connID ulid.ULID) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if old, exists := sm.sessions[userID]; exists {
		close(old.Outbox)
		slog.Info("replacing existing session",
			"user_id", userID.String(),
			"old_conn_id", old.ConnID.String(),
		)
	}
	session := &Session{
		UserID:      userID,
		ConnID:      connID,
		Outbox:      make(chan string, outboxSize),
		ConnectedAt: time.Now(),
	}
	sm.sessions[userID] = session
	return session
}

// Disconnect removes the user's session, but only if it still belongs to
// the given connection. A session already replaced by a newer connection
// is left alone.
func (sm *SessionManager) Disconnect(userID, connID ulid.ULID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[userID]
	if !exists {
		slog.Debug("disconnect for unknown session", "user_id", userID.String())
		return
	}
	if session.ConnID != connID {
		return
	}
	close(session.Outbox)
	delete(sm.sessions, userID)
}

// Get returns the user's session, or nil when the user is offline.
func (sm *SessionManager) Get(userID ulid.ULID) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[userID]
}

// Deliver enqueues a line for the user. Users without a session, and
// sessions with a full outbox, miss the message.
func (sm *SessionManager) Deliver(userID ulid.ULID, text string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[userID]
	if !exists {
		return
	}
	select {
	case session.Outbox <- text:
	default:
		slog.Warn("dropping message for slow client",
			"user_id", userID.String(),
			"conn_id", session.ConnID.String(),
		)
		if sm.onDrop != nil {
			sm.onDrop(userID)
		}
	}
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
