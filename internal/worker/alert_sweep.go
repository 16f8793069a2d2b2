package worker

// alert_sweep.go
// Periodically collects every LOW_STOCK/OUT_OF_STOCK record and enqueues a
// single digest job. Catches records that were already alerting at startup,
// for which no transition alert is ever raised.

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"multipos/internal/model"
)

// LowStockSource is satisfied by repository.InventoryRepository.
type LowStockSource interface {
	ListLowStock(ctx context.Context, shopID *uuid.UUID) ([]model.InventoryRecord, error)
}

// DigestEnqueuer is satisfied by *Dispatcher.
type DigestEnqueuer interface {
	EnqueueLowStockDigest(ctx context.Context, alerts []LowStockAlert) error
}

// StartAlertSweep runs the sweep every interval until ctx is cancelled.
// Must be called as a goroutine.
func StartAlertSweep(ctx context.Context, source LowStockSource, out DigestEnqueuer, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("alert_sweep: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("alert_sweep: stopped")
			return
		case <-ticker.C:
			if n, err := SweepOnce(ctx, source, out); err != nil {
				log.Error().Err(err).Msg("alert_sweep: sweep failed")
			} else if n > 0 {
				log.Info().Int("alerts", n).Msg("alert_sweep: digest enqueued")
			}
		}
	}
}

// SweepOnce enqueues one digest for every alerting record across all shops
// and returns how many alerts it carried.
func SweepOnce(ctx context.Context, source LowStockSource, out DigestEnqueuer) (int, error) {
	records, err := source.ListLowStock(ctx, nil)
	if err != nil {
		return 0, err
	}
	alerts := make([]LowStockAlert, 0, len(records))
	for i := range records {
		alerts = append(alerts, AlertFromRecord(&records[i]))
	}
	if len(alerts) == 0 {
		return 0, nil
	}
	if err := out.EnqueueLowStockDigest(ctx, alerts); err != nil {
		return 0, err
	}
	return len(alerts), nil
}
