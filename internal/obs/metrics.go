package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics are the Prometheus counters/histograms threaded through
// extraction, routing, adapter fan-out and scoring, registered exactly
// once via sync.Once so re-running setup in tests never panics on a
// duplicate registration.
type PipelineMetrics struct {
	ClaimsExtracted   prometheus.Counter
	ClaimsRejected    *prometheus.CounterVec // by reason
	EvidenceFetched   *prometheus.CounterVec // by source_api
	AdapterErrors     *prometheus.CounterVec // by source_api
	ScorerVerdicts    *prometheus.CounterVec // by status
	OrchestratorTime  prometheus.Histogram

	WSConnectionsTotal    prometheus.Counter
	WSConnectionsActive   prometheus.Gauge
	WSDisconnectionsTotal prometheus.Counter
}

var (
	metricsOnce   sync.Once
	sharedMetrics *PipelineMetrics
)

// Metrics returns the process-wide singleton PipelineMetrics, registering it
// with the default Prometheus registry on first use.
func Metrics() *PipelineMetrics {
	metricsOnce.Do(func() {
		sharedMetrics = &PipelineMetrics{
			ClaimsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "veritas_claims_extracted_total",
				Help: "Total number of claims that survived extraction.",
			}),
			ClaimsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "veritas_claims_rejected_total",
				Help: "Total number of candidate sentences rejected, by reason.",
			}, []string{"reason"}),
			EvidenceFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "veritas_evidence_fetched_total",
				Help: "Total evidence candidates fetched, by source_api.",
			}, []string{"source_api"}),
			AdapterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "veritas_adapter_errors_total",
				Help: "Total adapter fetch failures absorbed without surfacing, by source_api.",
			}, []string{"source_api"}),
			ScorerVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "veritas_scorer_verdicts_total",
				Help: "Total auto-status verdicts assigned, by status.",
			}, []string{"status"}),
			OrchestratorTime: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "veritas_orchestrator_source_duration_seconds",
				Help:    "Time spent running the full pipeline for one source.",
				Buckets: prometheus.DefBuckets,
			}),
			WSConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "veritas_ws_connections_total",
				Help: "Total WebSocket feed connections accepted.",
			}),
			WSConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "veritas_ws_connections_active",
				Help: "Currently connected WebSocket feed clients.",
			}),
			WSDisconnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "veritas_ws_disconnections_total",
				Help: "Total WebSocket feed disconnections.",
			}),
		}
		prometheus.MustRegister(
			sharedMetrics.ClaimsExtracted,
			sharedMetrics.ClaimsRejected,
			sharedMetrics.EvidenceFetched,
			sharedMetrics.AdapterErrors,
			sharedMetrics.ScorerVerdicts,
			sharedMetrics.OrchestratorTime,
			sharedMetrics.WSConnectionsTotal,
			sharedMetrics.WSConnectionsActive,
			sharedMetrics.WSDisconnectionsTotal,
		)
	})
	return sharedMetrics
}
