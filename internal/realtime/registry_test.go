package realtime_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"pennywise/internal/realtime"
)

type stubConn struct{ name string }

func (c *stubConn) Send(event string, payload any) error { return nil }

func TestRegistry_RegisterLastWriteWins(t *testing.T) {
	registry := realtime.NewRegistry()
	userID := uuid.New()

	first := &stubConn{name: "first"}
	second := &stubConn{name: "second"}

	registry.Register(userID, first)
	registry.Register(userID, second)

	got, ok := registry.Lookup(userID)
	assert.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, registry.Size())
}

func TestRegistry_UnregisterByHandle(t *testing.T) {
	registry := realtime.NewRegistry()
	userID := uuid.New()

	stale := &stubConn{name: "stale"}
	current := &stubConn{name: "current"}

	registry.Register(userID, stale)
	registry.Register(userID, current)

	// The stale handle was displaced; closing it must not evict the
	// current connection.
	registry.Unregister(stale)

	got, ok := registry.Lookup(userID)
	assert.True(t, ok)
	assert.Same(t, current, got)

	registry.Unregister(current)

	_, ok = registry.Lookup(userID)
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Size())
}

func TestRegistry_LookupUnknownUser(t *testing.T) {
	registry := realtime.NewRegistry()

	_, ok := registry.Lookup(uuid.New())
	assert.False(t, ok)
}
