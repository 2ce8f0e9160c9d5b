package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-hall/contract"
	"chat-hall/runtime"
)

// Ensure *BanSweeper implements the contract.Worker interface at compile time.
var _ contract.Worker = (*BanSweeper)(nil)

// BanSweeper periodically purges expired bans so the registry does not grow
// with records nobody will ever look up again. Lazy expiry at join time
// remains the correctness mechanism; this is housekeeping only.
type BanSweeper struct {
	bans     *runtime.BanRegistry
	interval time.Duration
	log      *slog.Logger
}

func NewBanSweeper(bans *runtime.BanRegistry, interval time.Duration, log *slog.Logger) *BanSweeper {
	return &BanSweeper{bans: bans, interval: interval, log: log}
}

func (w *BanSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-ticker.C:
			if removed := w.bans.Sweep(time.Now()); removed > 0 {
				w.log.Debug("Expired bans purged", "count", removed)
			}
		}
	}
}
