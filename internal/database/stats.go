package database

import (
	"context"
	"fmt"
	"time"

	"github.com/yanizio/dbconf/internal/metrics"
)

// SamplePool copies stat() into the pool gauges every interval until ctx
// is done.  Pass pool.Stat wrapped as func() metrics.PoolStat.  every must
// be positive.
func SamplePool(ctx context.Context, stat func() metrics.PoolStat, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("sample pool: interval must be positive, got %s", every)
	}
	t := time.NewTicker(every)
	defer t.Stop()

	metrics.RecordPool(stat())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			metrics.RecordPool(stat())
		}
	}
}
