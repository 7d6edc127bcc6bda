package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource provides functions to retrieve current counts for gauge metrics.
// Each function returns the current count; returning -1 indicates the source is unavailable.
type StatsSource struct {
	HistoryCount     func() int
	CalibrationCount func() int
	GrinderCount     func() int
}

// RunCollector updates gauge metrics immediately and then every interval
// until ctx is cancelled. It blocks; run it in its own goroutine.
func RunCollector(ctx context.Context, src StatsSource, interval time.Duration) error {
	collect(src)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Metrics collector started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			collect(src)
		}
	}
}

func collect(src StatsSource) {
	setIfAvailable := func(fn func() int, set func(float64)) {
		if fn == nil {
			return
		}
		if n := fn(); n >= 0 {
			set(float64(n))
		}
	}

	setIfAvailable(src.HistoryCount, HistoryRecordsTotal.Set)
	setIfAvailable(src.CalibrationCount, CalibrationsTotal.Set)
	setIfAvailable(src.GrinderCount, GrindersLoaded.Set)
}
