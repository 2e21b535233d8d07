// Package snapshot periodically recomputes analytics over the full record
// set and archives the results, one snapshot id per run.
package snapshot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"liquidation-radar/internal/analytics"
	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/observability"
	"liquidation-radar/internal/storage"
)

// Job archives analytics snapshots on a schedule.
type Job struct {
	liquidations storage.LiquidationStore
	dailyStats   storage.DailyStatStore
	liquidators  storage.LiquidatorStatStore
	interval     time.Duration
	logger       *log.Logger
}

// Options configures a snapshot Job.
type Options struct {
	Liquidations storage.LiquidationStore
	DailyStats   storage.DailyStatStore
	Liquidators  storage.LiquidatorStatStore
	Interval     time.Duration // Default: 1 hour
	Logger       *log.Logger
}

// New creates a new snapshot job.
func New(opts Options) *Job {
	interval := opts.Interval
	if interval == 0 {
		interval = 1 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Job{
		liquidations: opts.Liquidations,
		dailyStats:   opts.DailyStats,
		liquidators:  opts.Liquidators,
		interval:     interval,
		logger:       logger,
	}
}

// Run executes snapshots on schedule until the context is cancelled.
// The first snapshot runs immediately.
func (j *Job) Run(ctx context.Context) error {
	j.logger.Printf("Starting snapshot scheduler (interval: %v)...", j.interval)

	if _, err := j.RunOnce(ctx, time.Now()); err != nil {
		j.logger.Printf("Snapshot error: %v", err)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Println("Snapshot scheduler stopping...")
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.RunOnce(ctx, time.Now()); err != nil {
				j.logger.Printf("Snapshot error: %v", err)
			}
		}
	}
}

// RunOnce computes and archives one snapshot over the full record set.
// Returns the snapshot id.
func (j *Job) RunOnce(ctx context.Context, now time.Time) (string, error) {
	start := time.Now()

	records, err := j.liquidations.GetByTimeRange(ctx, 0, now.Unix()+1)
	if err != nil {
		return "", fmt.Errorf("load records: %w", err)
	}

	result := analytics.Aggregate(records, domain.TimeFilterMax, 0, now)

	snapshotID := uuid.NewString()
	computedAt := now.UnixMilli()

	dailyRows := make([]*domain.DailyStatRow, 0, len(result.TimeSeries))
	for _, bucket := range result.TimeSeries {
		dailyRows = append(dailyRows, &domain.DailyStatRow{
			SnapshotID:         snapshotID,
			Date:               bucket.Date,
			Count:              bucket.Count,
			TotalProfitUsd:     bucket.TotalProfit,
			TotalDebtUsd:       bucket.TotalDebtUsd,
			TotalCollateralUsd: bucket.TotalCollateral,
			AvgLatencySeconds:  bucket.AvgLatency,
			ComputedAt:         computedAt,
		})
	}

	liquidatorRows := make([]*domain.LiquidatorStatRow, 0, len(result.Leaderboard))
	for _, stat := range result.Leaderboard {
		liquidatorRows = append(liquidatorRows, &domain.LiquidatorStatRow{
			SnapshotID:        snapshotID,
			Liquidator:        stat.Liquidator,
			TotalProfitUsd:    stat.TotalProfit,
			AvgLatencySeconds: stat.AvgLatency,
			Count:             stat.Count,
			ComputedAt:        computedAt,
		})
	}

	if err := j.dailyStats.InsertBulk(ctx, dailyRows); err != nil {
		return "", fmt.Errorf("archive daily stats: %w", err)
	}
	if err := j.liquidators.InsertBulk(ctx, liquidatorRows); err != nil {
		return "", fmt.Errorf("archive liquidator stats: %w", err)
	}

	observability.DefaultMetrics.SnapshotsArchived.Inc()
	observability.DefaultMetrics.LastSuccessfulSnapshot.SetToCurrentTime()

	j.logger.Printf("Snapshot %s archived in %v: %d records, %d dates, %d liquidators",
		snapshotID, time.Since(start), len(records), len(dailyRows), len(liquidatorRows))

	return snapshotID, nil
}
