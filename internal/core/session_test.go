// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package core_test

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapestrymud/tapestry/internal/core"
)

func TestSessionManager_ConnectReplaces(t *testing.T) {
	sm := core.NewSessionManager(nil)
	userID := core.NewULID()

	first := sm.Connect(userID, core.NewULID())
	second := sm.Connect(userID, core.NewULID())

	_, open := <-first.Outbox
	assert.False(t, open, "replaced session's outbox is closed")
	assert.Equal(t, second.ConnID, sm.Get(userID).ConnID)
	assert.Equal(t, 1, sm.Count())
}

func TestSessionManager_Deliver(t *testing.T) {
	sm := core.NewSessionManager(nil)
	userID := core.NewULID()
	session := sm.Connect(userID, core.NewULID())

	sm.Deliver(userID, "hello")
	assert.Equal(t, "hello", <-session.Outbox)

	t.Run("offline user misses the message", func(t *testing.T) {
		sm.Deliver(core.NewULID(), "lost")
		assert.Empty(t, session.Outbox)
	})
}

func TestSessionManager_DeliverDropsWhenFull(t *testing.T) {
	var dropped []ulid.ULID
	sm := core.NewSessionManager(func(userID ulid.ULID) {
		dropped = append(dropped, userID)
	})
	userID := core.NewULID()
	session := sm.Connect(userID, core.NewULID())

	for i := 0; i < cap(session.Outbox); i++ {
		sm.Deliver(userID, "fill")
	}
	sm.Deliver(userID, "overflow")

	assert.Len(t, session.Outbox, cap(session.Outbox))
	require.Len(t, dropped, 1)
	assert.Equal(t, userID, dropped[0])
}

func TestSessionManager_Disconnect(t *testing.T) {
	sm := core.NewSessionManager(nil)
	userID := core.NewULID()
	session := sm.Connect(userID, core.NewULID())

	t.Run("wrong connection id is ignored", func(t *testing.T) {
		sm.Disconnect(userID, core.NewULID())
		assert.NotNil(t, sm.Get(userID))
	})

	sm.Disconnect(userID, session.ConnID)
	assert.Nil(t, sm.Get(userID))
	assert.Equal(t, 0, sm.Count())

	t.Run("disconnecting again is harmless", func(t *testing.T) {
		sm.Disconnect(userID, session.ConnID)
	})
}

func TestParseULID(t *testing.T) {
	id := core.NewULID()
	parsed, err := core.ParseULID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = core.ParseULID("not-a-ulid")
	assert.Error(t, err)
}
