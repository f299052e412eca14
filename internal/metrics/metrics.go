package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records runtime activity as Prometheus series.
type Metrics struct {
	registry *prometheus.Registry

	loads       *prometheus.CounterVec
	loadSeconds prometheus.Histogram
	loadBytes   prometheus.Histogram
	patches     prometheus.Counter
	matches     prometheus.Counter
	actions     *prometheus.CounterVec
}

// New registers the canopy series on a private registry, alongside the Go
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_loads_total",
			Help: "Screen loads by outcome.",
		}, []string{"outcome"}),
		loadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canopy_decode_seconds",
			Help:    "Time spent fetching and decoding a screen.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		loadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canopy_load_bytes",
			Help:    "Size of fetched screen payloads.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
		patches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_patches_total",
			Help: "Patches applied to stored screens.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canopy_patch_matches_total",
			Help: "Nodes updated by patches.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_actions_total",
			Help: "Dispatched actions by type and whether a handler ran.",
		}, []string{"type", "handled"}),
	}
	m.registry.MustRegister(
		m.loads, m.loadSeconds, m.loadBytes, m.patches, m.matches, m.actions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle callbacks that feed the series.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(ctx context.Context, e *domain.LoadEvent) {
			m.loads.WithLabelValues(outcome(e.Err)).Inc()
			if e.Err == nil {
				m.loadSeconds.Observe(e.Duration.Seconds())
				m.loadBytes.Observe(float64(e.Bytes))
			}
		},
		OnPatch: func(ctx context.Context, e *domain.PatchEvent) {
			m.patches.Add(float64(len(e.Patches)))
			m.matches.Add(float64(e.Matches))
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			handled := "false"
			if e.Handled {
				handled = "true"
			}
			m.actions.WithLabelValues(e.Action.Type, handled).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch loader.KindOf(err) {
	case loader.ResourceNotFound:
		return "not_found"
	case loader.DecodeFailed:
		return "decode_failed"
	}
	return "unreadable"
}
