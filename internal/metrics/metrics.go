package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersTotal tracks zone transfer attempts by outcome
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_gather_transfers_total",
			Help: "Total number of zone transfer attempts",
		},
		[]string{"status"}, // success, failure
	)

	// RecordsTotal tracks DNS records gathered by record type
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_gather_records_total",
			Help: "Total number of DNS records gathered",
		},
		[]string{"type"}, // A, AAAA, CNAME, PTR, SRV, ...
	)

	// TransferDuration tracks zone transfer duration
	TransferDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dns_gather_transfer_duration_seconds",
			Help:    "Duration of zone transfer operations",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"}, // success, failure
	)

	// ValidationWarningsTotal tracks hostname validation warnings
	ValidationWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dns_gather_validation_warnings_total",
			Help: "Total number of record validation warnings",
		},
	)

	// ZonesDiscovered tracks the number of zones found on the server
	ZonesDiscovered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dns_gather_zones_discovered",
			Help: "Number of zones discovered on the DNS server",
		},
	)

	// RecordsCurrent tracks record count per transferred zone
	RecordsCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dns_gather_records_current",
			Help: "Number of records obtained from each zone",
		},
		[]string{"zone"},
	)

	// LastSuccessTimestamp tracks the last successful gather run
	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dns_gather_last_success_timestamp_seconds",
			Help: "Timestamp of last successful gather run",
		},
	)

	// ErrorsTotal tracks errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_gather_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // denied, transport, timeout, other, export
	)
)
