package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	globalMetrics *Metrics
	globalOnce    sync.Once
)

// Metrics holds the Prometheus collectors for bulk campaigns
type Metrics struct {
	RecipientsTotal  *prometheus.CounterVec
	LookupsTotal     *prometheus.CounterVec
	CampaignsTotal   *prometheus.CounterVec
	CampaignRunning  prometheus.Gauge
	CampaignDuration prometheus.Histogram
	SendDuration     prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a Metrics instance on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RecipientsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_recipients_processed_total",
				Help: "Recipients processed by campaign runs, by report status",
			},
			[]string{"status"},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_number_lookups_total",
				Help: "WhatsApp number lookups issued by the prechecker",
			},
			[]string{"result"},
		),
		CampaignsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_campaigns_total",
				Help: "Finished campaign runs, by how they ended",
			},
			[]string{"result"},
		),
		CampaignRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bulk_campaign_running",
			Help: "1 while a campaign run is active",
		}),
		CampaignDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulk_campaign_duration_seconds",
			Help:    "Wall time of campaign runs",
			Buckets: prometheus.ExponentialBuckets(10, 3, 8),
		}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulk_send_duration_seconds",
			Help:    "Time spent delivering one recipient's messages",
			Buckets: prometheus.DefBuckets,
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.RecipientsTotal,
		m.LookupsTotal,
		m.CampaignsTotal,
		m.CampaignRunning,
		m.CampaignDuration,
		m.SendDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry used for the /metrics endpoint
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Global returns the process-wide metrics, created on first use
func Global() *Metrics {
	globalOnce.Do(func() {
		globalMetrics = New()
	})
	return globalMetrics
}
