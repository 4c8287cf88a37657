// Package gather sequences zone transfers across the zone list and
// aggregates per-zone outcomes for the report.
package gather

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yourusername/dns-gather/internal/metrics"
	"github.com/yourusername/dns-gather/internal/model"
	"github.com/yourusername/dns-gather/internal/transfer"
)

// Runner drives zone transfers through a bounded worker pool. A single
// zone's failure never aborts the batch, and cancellation stops launching
// new transfers without discarding completed results.
type Runner struct {
	retriever *transfer.Retriever
	workers   int
	logger    zerolog.Logger
}

// NewRunner creates a Runner. A worker count below one is treated as one,
// which reproduces strictly sequential transfers.
func NewRunner(retriever *transfer.Retriever, workers int, logger zerolog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		retriever: retriever,
		workers:   workers,
		logger:    logger.With().Str("component", "runner").Logger(),
	}
}

type outcome struct {
	records   []model.DNSRecord
	errMsg    string
	attempted bool
}

// Run transfers every zone and returns the records keyed by zone name plus
// the zone list with terminal statuses filled in, preserving input order.
// Zones skipped due to cancellation keep their Pending status and get no
// recordsByZone entry.
func (r *Runner) Run(ctx context.Context, zones []model.ZoneInfo) (map[string][]model.DNSRecord, []model.ZoneInfo) {
	start := time.Now()
	r.logger.Info().
		Int("zones", len(zones)).
		Int("workers", r.workers).
		Msg("Starting zone transfers")

	out := make([]model.ZoneInfo, len(zones))
	copy(out, zones)

	// Each worker writes only its own index; no shared mutable state.
	results := make([]outcome, len(zones))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				records, errMsg := r.retriever.Transfer(ctx, out[idx].Name)
				results[idx] = outcome{records: records, errMsg: errMsg, attempted: true}
			}
		}()
	}

feed:
	for i := range out {
		select {
		case <-ctx.Done():
			r.logger.Warn().Msg("Cancellation received, no further transfers will start")
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	recordsByZone := make(map[string][]model.DNSRecord, len(out))
	for i := range out {
		res := results[i]
		if !res.attempted {
			continue
		}

		recordsByZone[out[i].Name] = res.records
		out[i].RecordCount = len(res.records)

		if res.errMsg != "" {
			out[i].TransferStatus = model.StatusFailed
			out[i].ErrorMessage = res.errMsg
			metrics.TransfersTotal.WithLabelValues("failure").Inc()
			r.logger.Warn().
				Str("zone", out[i].Name).
				Str("error", res.errMsg).
				Msg("Zone transfer failed")
			continue
		}

		out[i].TransferStatus = model.StatusSuccess
		out[i].ErrorMessage = ""
		metrics.TransfersTotal.WithLabelValues("success").Inc()
		metrics.RecordsCurrent.WithLabelValues(out[i].Name).Set(float64(len(res.records)))
		for _, rec := range res.records {
			metrics.RecordsTotal.WithLabelValues(rec.Type).Inc()
		}
		r.logger.Info().
			Str("zone", out[i].Name).
			Int("records", len(res.records)).
			Msg("Zone transfer successful")
	}

	r.logger.Info().
		Float64("duration_seconds", time.Since(start).Seconds()).
		Msg("Zone transfers completed")

	return recordsByZone, out
}
