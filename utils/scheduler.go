package utils

import (
	"context"
	"time"

	"educa/logger"

	"github.com/robfig/cron/v3"
)

// InitializeCacheScheduler re-warms cached listings on schedule (standard 5-field cron).
// An empty schedule disables it and returns a nil scheduler.
func InitializeCacheScheduler(schedule string, warm func(ctx context.Context) error) (*cron.Cron, error) {
	if schedule == "" {
		logger.Log.Info("[CACHE-SCHEDULER] No schedule configured, cache warm-up disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		start := time.Now()
		if err := warm(ctx); err != nil {
			logger.Log.Error("[CACHE-SCHEDULER] Warm-up failed", "error", err)
			return
		}
		logger.Log.Info("[CACHE-SCHEDULER] Warm-up done", "took", time.Since(start))
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.Info("[CACHE-SCHEDULER] Cache scheduler started", "schedule", schedule)
	return c, nil
}
