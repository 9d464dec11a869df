// Package metrics exposes the Prometheus instruments for ingestion runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(New),
)

// NewRegistry builds the process registry with the standard collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Metrics carries the ingestion counters.
type Metrics struct {
	RunsTotal     prometheus.Counter
	JobsCreated   prometheus.Counter
	JobsProcessed prometheus.Counter
	SourcesOK     prometheus.Counter
	SourceErrors  prometheus.Counter
	ProviderCalls *prometheus.CounterVec
	QuotaDenied   *prometheus.CounterVec
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobfeed_ingest_runs_total",
			Help: "Completed ingestion runs.",
		}),
		JobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobfeed_jobs_created_total",
			Help: "Newly created job rows.",
		}),
		JobsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobfeed_jobs_processed_total",
			Help: "Postings handled during runs, denied creations included.",
		}),
		SourcesOK: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobfeed_sources_ok_total",
			Help: "Sources that completed a run without an unrecovered error.",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobfeed_source_errors_total",
			Help: "Sources that failed during a run.",
		}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfeed_provider_calls_total",
			Help: "Provider API calls consumed from the daily budget.",
		}, []string{"provider"}),
		QuotaDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfeed_quota_denied_total",
			Help: "Budget denials by scope (provider_call or new_job).",
		}, []string{"scope"}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.JobsCreated,
		m.JobsProcessed,
		m.SourcesOK,
		m.SourceErrors,
		m.ProviderCalls,
		m.QuotaDenied,
	)
	return m
}
