package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yourusername/dns-gather/internal/metrics"
	"github.com/yourusername/dns-gather/internal/model"
)

// Retriever performs zone transfers through a Provider and parses the raw
// zone into DNSRecord values. It never returns an error: all provider
// failures are converted into a human-readable message so a single bad zone
// cannot abort a batch.
type Retriever struct {
	provider Provider
	logger   zerolog.Logger
}

// NewRetriever creates a Retriever on top of the given transfer provider.
func NewRetriever(provider Provider, logger zerolog.Logger) *Retriever {
	return &Retriever{
		provider: provider,
		logger:   logger.With().Str("component", "retriever").Logger(),
	}
}

// Transfer retrieves one zone. On success the error message is empty; an
// empty zone yields zero records and is not a failure. On failure the record
// list is empty and the message carries a prefix identifying the failure
// class (denied/malformed, transfer error, timeout, or generic failure).
func (r *Retriever) Transfer(ctx context.Context, zoneName string) ([]model.DNSRecord, string) {
	start := time.Now()

	entries, err := r.provider.Transfer(ctx, zoneName)
	if err != nil {
		metrics.TransferDuration.WithLabelValues("failure").Observe(time.Since(start).Seconds())
		return nil, transferErrorMessage(zoneName, err)
	}
	metrics.TransferDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

	// Warnings are scoped to this call so concurrent transfers cannot leak
	// warnings across zones.
	var warnings []string
	records := parseZoneData(entries, zoneName, &warnings)

	for _, w := range warnings {
		metrics.ValidationWarningsTotal.Inc()
		r.logger.Warn().Str("zone", zoneName).Msg(w)
	}

	return records, ""
}

// parseZoneData converts provider entries into DNSRecord values, running
// hostname validation on each entry as it goes. Entry order is preserved.
func parseZoneData(entries []Entry, zoneName string, warnings *[]string) []model.DNSRecord {
	records := make([]model.DNSRecord, 0, len(entries))

	for _, e := range entries {
		absoluteName := absoluteName(e.Name, zoneName)

		validateHostnameMatch(e.Name, absoluteName, e.Type, e.Data, zoneName, warnings)

		records = append(records, model.DNSRecord{
			Name: e.Name,
			Type: e.Type,
			TTL:  e.TTL,
			Data: e.Data,
		})
	}

	return records
}

// absoluteName expands a zone-relative owner name: the apex marker becomes
// the zone name itself, anything else gets the zone name appended.
func absoluteName(name, zoneName string) string {
	zone := strings.TrimSuffix(zoneName, ".")
	if name == "@" {
		return zone
	}
	return strings.TrimSuffix(name, ".") + "." + zone
}

func transferErrorMessage(zoneName string, err error) string {
	switch {
	case errors.Is(err, ErrDenied):
		metrics.ErrorsTotal.WithLabelValues("denied").Inc()
		return fmt.Sprintf("Zone transfer denied or malformed: %v", err)
	case errors.Is(err, ErrTransport):
		metrics.ErrorsTotal.WithLabelValues("transport").Inc()
		return fmt.Sprintf("Zone transfer error: %v", err)
	case errors.Is(err, ErrTimeout):
		metrics.ErrorsTotal.WithLabelValues("timeout").Inc()
		return fmt.Sprintf("Zone transfer timeout for %s", zoneName)
	default:
		metrics.ErrorsTotal.WithLabelValues("other").Inc()
		return fmt.Sprintf("Zone transfer failed: %v", err)
	}
}
