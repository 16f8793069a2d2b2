package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"multipos/internal/model"
	"multipos/internal/stock"
	"multipos/internal/worker"
)

// AlertEnqueuer is satisfied by *worker.Dispatcher.
type AlertEnqueuer interface {
	EnqueueLowStock(ctx context.Context, alerts ...worker.LowStockAlert) error
}

// stockChange is one inventory record after a committed mutation, together
// with the status it had before.
type stockChange struct {
	record *model.InventoryRecord
	before stock.Status
}

// stockEffects runs the post-commit side effects of stock mutations: the
// status cache write-through and low-stock alerts. Both are best-effort.
type stockEffects struct {
	cache  *StatusCache
	alerts AlertEnqueuer
}

func (e stockEffects) apply(ctx context.Context, changes []stockChange) {
	if len(changes) == 0 {
		return
	}
	recs := make([]*model.InventoryRecord, 0, len(changes))
	var alerts []worker.LowStockAlert
	for _, ch := range changes {
		recs = append(recs, ch.record)
		after := ch.record.Status()
		if after.IsAlerting() && after != ch.before {
			alerts = append(alerts, worker.AlertFromRecord(ch.record))
		}
	}
	e.cache.Store(ctx, recs...)

	if len(alerts) == 0 || e.alerts == nil {
		return
	}
	if err := e.alerts.EnqueueLowStock(ctx, alerts...); err != nil {
		log.Warn().Err(err).Int("alerts", len(alerts)).Msg("low stock alert enqueue failed")
	}
}
