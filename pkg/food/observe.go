package food

import (
	"context"
	"time"

	"foodflow/pkg/logger"
	"foodflow/pkg/metrics"
)

// Observe logs and records the request charge and elapsed time of one
// store operation.
func Observe(ctx context.Context, log *logger.Logger, store, op string, charge float64, start time.Time) {
	observe(ctx, log, store, op, charge, start)
}

// ObservePage is Observe for paging operations. fetches is the number of
// store round trips it took to reach the page.
func ObservePage(ctx context.Context, log *logger.Logger, store, op string, charge float64, fetches int, start time.Time) {
	metrics.StorePageFetches.WithLabelValues(store, op).Observe(float64(fetches))
	observe(ctx, log, store, op, charge, start, "fetches", fetches)
}

func observe(ctx context.Context, log *logger.Logger, store, op string, charge float64, start time.Time, fields ...any) {
	elapsed := time.Since(start)
	metrics.ObserveStore(store, op, charge, elapsed)
	args := []any{
		"store", store,
		"op", op,
		"request_charge", charge,
		"elapsed_ms", float64(elapsed.Microseconds()) / 1000,
	}
	log.Info(ctx, "store operation", append(args, fields...)...)
}
