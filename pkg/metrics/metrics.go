// Package metrics exposes Prometheus counters for background sync work.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the interface the sync and import jobs report through.
type Collector interface {
	RecordSyncSuccess(provider string)
	RecordSyncFailure(provider string, reason string)
	RecordSyncLatency(provider string, duration time.Duration)
	RecordItemsUpserted(provider string, count int)
	RecordVendorCall(provider string)
}

type promCollector struct {
	syncSuccess   *prometheus.CounterVec
	syncFailure   *prometheus.CounterVec
	syncLatency   *prometheus.HistogramVec
	itemsUpserted *prometheus.CounterVec
	vendorCalls   *prometheus.CounterVec
}

// NewCollector creates the collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) Collector {
	c := &promCollector{
		syncSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcrm_sync_success_total",
			Help: "Completed sync runs per provider",
		}, []string{"provider"}),
		syncFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcrm_sync_failure_total",
			Help: "Failed sync runs per provider and reason",
		}, []string{"provider", "reason"}),
		syncLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netcrm_sync_latency_seconds",
			Help:    "Wall time of a full sync run",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		itemsUpserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcrm_items_upserted_total",
			Help: "Rows created or updated by sync runs",
		}, []string{"provider"}),
		vendorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcrm_vendor_calls_total",
			Help: "Outbound vendor API calls",
		}, []string{"provider"}),
	}

	reg.MustRegister(c.syncSuccess, c.syncFailure, c.syncLatency, c.itemsUpserted, c.vendorCalls)
	return c
}

func (c *promCollector) RecordSyncSuccess(provider string) {
	c.syncSuccess.WithLabelValues(provider).Inc()
}

func (c *promCollector) RecordSyncFailure(provider, reason string) {
	c.syncFailure.WithLabelValues(provider, reason).Inc()
}

func (c *promCollector) RecordSyncLatency(provider string, duration time.Duration) {
	c.syncLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

func (c *promCollector) RecordItemsUpserted(provider string, count int) {
	c.itemsUpserted.WithLabelValues(provider).Add(float64(count))
}

func (c *promCollector) RecordVendorCall(provider string) {
	c.vendorCalls.WithLabelValues(provider).Inc()
}

// Nop returns a collector that discards everything. Used in tests and when
// metrics are disabled.
func Nop() Collector { return nopCollector{} }

type nopCollector struct{}

func (nopCollector) RecordSyncSuccess(string)                {}
func (nopCollector) RecordSyncFailure(string, string)        {}
func (nopCollector) RecordSyncLatency(string, time.Duration) {}
func (nopCollector) RecordItemsUpserted(string, int)         {}
func (nopCollector) RecordVendorCall(string)                 {}
