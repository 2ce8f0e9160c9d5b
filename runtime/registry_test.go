package runtime

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-hall/protocol"
)

func registryFixture() (*SessionRegistry, func() (*Session, *recorder)) {
	registry := NewSessionRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	connect := func() (*Session, *recorder) {
		ep := &recorder{}
		s := newSession(ep, nil, 1, log)
		registry.RegisterGuest(s)
		return s, ep
	}
	return registry, connect
}

func TestRegistry_RegisterGuestAssignsDefaultIdentities(t *testing.T) {
	req := require.New(t)

	// Given an empty registry
	registry, connect := registryFixture()
	req.Zero(registry.Count())

	// When two sessions register
	s1, _ := connect()
	s2, _ := connect()

	// Then they hold the first two guest identities
	req.Equal("guest1", s1.identity)
	req.Equal("guest2", s2.identity)
	req.True(registry.IdentityInUse("guest1"))
	req.Equal(2, registry.Count())
}

func TestRegistry_RenameRecyclesTheGuestNumber(t *testing.T) {
	req := require.New(t)

	registry, connect := registryFixture()
	s1, _ := connect()

	// When the session takes a chosen identity
	registry.RenameIdentity(s1, "bob")

	// Then the former identity is free and lookups follow the new one
	req.False(registry.IdentityInUse("guest1"))
	req.True(registry.IdentityInUse("bob"))
	found, ok := registry.Lookup("bob")
	req.True(ok)
	req.Same(s1, found)

	// And the next guest takes the recycled number
	s2, _ := connect()
	req.Equal("guest1", s2.identity)
}

func TestRegistry_RegisterGuestSkipsClaimedGuestNames(t *testing.T) {
	req := require.New(t)

	// Given a session holding a guest name the pool has not issued
	registry, connect := registryFixture()
	s1, _ := connect()
	registry.RenameIdentity(s1, "guest2")

	// When fresh sessions register
	s2, _ := connect()
	s3, _ := connect()

	// Then the recycled number is reused and the claimed one is skipped
	req.Equal("guest1", s2.identity)
	req.Equal("guest3", s3.identity)

	// And releasing the claimed name makes its number available again
	registry.Unregister(s1)
	s4, _ := connect()
	req.Equal("guest2", s4.identity)
}

func TestRegistry_UnregisterIsAbsentSafe(t *testing.T) {
	req := require.New(t)

	registry, connect := registryFixture()
	s1, _ := connect()

	registry.Unregister(s1)
	registry.Unregister(s1)

	req.Zero(registry.Count())
	req.False(registry.IdentityInUse("guest1"))
}

func TestRegistry_AnnounceFollowsRegistrationOrder(t *testing.T) {
	req := require.New(t)

	// Given three registered sessions
	registry, connect := registryFixture()
	_, ep1 := connect()
	s2, ep2 := connect()
	_, ep3 := connect()

	// When announcing after a departure
	registry.Unregister(s2)
	announce := protocol.NewIdentity{Former: "guest1", Identity: "bob"}
	registry.Announce(announce)

	// Then only the live sessions hear it
	req.Equal([]protocol.Frame{announce}, ep1.Frames())
	req.Empty(ep2.Frames())
	req.Equal([]protocol.Frame{announce}, ep3.Frames())
}
