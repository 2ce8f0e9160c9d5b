package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-hall/runtime"
)

func TestBanSweeper_PurgesExpiredBans(t *testing.T) {
	req := require.New(t)

	// Given a registry holding an already expired ban
	bans := runtime.NewBanRegistry()
	session := uuid.New()
	bans.Ban(session, "lobby2", time.Millisecond, time.Now().Add(-time.Minute))

	sweeper := NewBanSweeper(bans, 10*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sweeper.Run(ctx)
	}()

	// Then the record disappears without any lookup touching it
	req.Eventually(func() bool {
		return bans.Sweep(time.Now()) == 0 && !bans.IsActive(session, "lobby2", time.Now())
	}, time.Second, 10*time.Millisecond)

	// And the worker honors cancellation
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("BanSweeper should stop when the context is canceled")
	}
}
