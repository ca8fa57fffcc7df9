package reservation

import (
	"context"
	"log"
	"time"
)

// RunSweeper periodically reclaims expired holds until ctx is cancelled.
// It complements the opportunistic expiry performed inside mutating
// transactions: a desk nobody touches again still frees itself within
// one interval of its hold expiring.
func RunSweeper(ctx context.Context, coord *Coordinator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := coord.ExpireHolds(ctx)
			if err != nil {
				log.Printf("hold sweep failed: %v", err)
				continue
			}
			if len(ids) > 0 {
				log.Printf("hold sweep reclaimed %d desk(s): %v", len(ids), ids)
			}
		}
	}
}
