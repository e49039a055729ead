// Package metrics records run outcomes as Prometheus metrics and, when a
// Pushgateway is configured, pushes them after every run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// JobName is the Pushgateway job the metrics are grouped under.
const JobName = "aws_compliance_snapshot"

const (
	namespace = "aws_compliance"
	subsystem = "snapshot"
)

// PrometheusRepository implements repository.MetricsRepository on a private registry.
type PrometheusRepository struct {
	registry *prometheus.Registry
	pusher   *push.Pusher
	now      func() time.Time

	runsTotal          *prometheus.CounterVec
	lastRun            prometheus.Gauge
	lastSuccess        prometheus.Gauge
	duration           prometheus.Gauge
	orgCompliance      prometheus.Gauge
	accountCompliance  *prometheus.GaugeVec
	accountsByBucket   *prometheus.GaugeVec
	findings           *prometheus.GaugeVec
	degradations       *prometheus.GaugeVec
	attributionMethods *prometheus.GaugeVec
}

// NewPrometheusRepository creates the metric set. An empty pushgatewayURL
// disables pushing; metrics are still recorded in the registry.
func NewPrometheusRepository(pushgatewayURL string) *PrometheusRepository {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &PrometheusRepository{
		registry: reg,
		now:      time.Now,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "runs_total",
			Help: "Snapshot runs by outcome.",
		}, []string{"outcome"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "last_run_timestamp_seconds",
			Help: "Unix time of the last finished run.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "processing_seconds",
			Help: "Processing time of the last successful run.",
		}),
		orgCompliance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "organization_compliance_percentage",
			Help:      "Organization-wide rule compliance percentage.",
		}),
		accountCompliance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "account_compliance_percentage",
			Help:      "Overall compliance percentage per account.",
		}, []string{"account_id", "account_name"}),
		accountsByBucket: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts_by_bucket",
			Help:      "Number of accounts per compliance bucket.",
		}, []string{"bucket"}),
		findings: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Findings in the last snapshot by kind.",
		}, []string{"kind"}),
		degradations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degradations",
			Help:      "Degradations absorbed by the last snapshot per stage.",
		}, []string{"stage"}),
		attributionMethods: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings_by_attribution_method",
			Help:      "Findings in the last snapshot per attribution method.",
		}, []string{"method"}),
	}

	if pushgatewayURL != "" {
		r.pusher = push.New(pushgatewayURL, JobName).Gatherer(reg)
	}
	return r
}

// Registry exposes the underlying registry.
func (r *PrometheusRepository) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRun updates the metrics for a finished run and pushes them when a
// Pushgateway is configured. Snapshot gauges keep their previous values
// when the run failed.
func (r *PrometheusRepository) RecordRun(ctx context.Context, snapshot *entity.Snapshot, runErr error) error {
	now := r.now()
	r.lastRun.Set(float64(now.Unix()))

	if runErr != nil || snapshot == nil {
		r.runsTotal.WithLabelValues("failure").Inc()
	} else {
		r.runsTotal.WithLabelValues("success").Inc()
		r.lastSuccess.Set(float64(now.Unix()))
		r.recordSnapshot(snapshot)
	}

	if r.pusher == nil {
		return nil
	}
	if err := r.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("job", JobName).Msg("metrics pushed")
	return nil
}

func (r *PrometheusRepository) recordSnapshot(s *entity.Snapshot) {
	r.duration.Set(s.ProcessingTimeSeconds)
	r.orgCompliance.Set(s.OrganizationCompliance.CompliancePercentage)

	r.accountCompliance.Reset()
	for _, acc := range s.AccountCompliance {
		r.accountCompliance.WithLabelValues(acc.AccountID, acc.AccountName).Set(acc.OverallCompliancePercentage)
	}

	dist := s.Statistics.ComplianceDistribution
	r.accountsByBucket.WithLabelValues("excellent").Set(float64(dist.Excellent))
	r.accountsByBucket.WithLabelValues("good").Set(float64(dist.Good))
	r.accountsByBucket.WithLabelValues("fair").Set(float64(dist.Fair))
	r.accountsByBucket.WithLabelValues("poor").Set(float64(dist.Poor))

	stats := s.Statistics
	r.findings.WithLabelValues("total").Set(float64(stats.TotalFindings))
	r.findings.WithLabelValues("placeholder").Set(float64(stats.PlaceholderFindings))
	r.findings.WithLabelValues("unattributed").Set(float64(stats.UnattributedFindings))

	r.degradations.Reset()
	for _, stage := range []string{entity.StageInventory, entity.StageCollector, entity.StagePublish} {
		r.degradations.WithLabelValues(stage).Set(0)
	}
	for _, d := range s.Degradations {
		r.degradations.WithLabelValues(d.Stage).Inc()
	}

	r.attributionMethods.Reset()
	for method, n := range stats.AttributionMethods {
		r.attributionMethods.WithLabelValues(string(method)).Set(float64(n))
	}
}
