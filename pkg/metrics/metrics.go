package metrics

import (
	"context"
	"net/http"

	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/provider/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quoteboard"

// Collector 看板刷新指标，使用独立 Registry
type Collector struct {
	registry *prometheus.Registry

	refreshes     prometheus.Counter
	failures      *prometheus.CounterVec
	rows          *prometheus.GaugeVec
	watchlistSize prometheus.Gauge
	duration      prometheus.Histogram
}

// NewCollector 创建并注册指标
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Number of dashboard refresh cycles.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed quote fetches by kind.",
		}, []string{"kind"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows",
			Help:      "Rows in the latest snapshot by section.",
		}, []string{"section"}),
		watchlistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watchlist_size",
			Help:      "Codes in the session watchlist.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a refresh cycle.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}

	c.registry.MustRegister(
		c.refreshes,
		c.failures,
		c.rows,
		c.watchlistSize,
		c.duration,
		collectors.NewGoCollector(),
	)
	return c
}

// Registry 返回指标注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// OnRefresh 记录一轮刷新
func (c *Collector) OnRefresh(_ context.Context, snap dashboard.Snapshot, stats dashboard.RefreshStats) {
	c.refreshes.Inc()
	c.duration.Observe(stats.Duration.Seconds())
	c.rows.WithLabelValues("indices").Set(float64(len(snap.Indices)))
	c.rows.WithLabelValues("watchlist").Set(float64(len(snap.Watch)))
	c.watchlistSize.Set(float64(len(snap.Codes)))

	for _, err := range stats.Errors {
		c.failures.WithLabelValues(failureKind(err)).Inc()
	}
}

func failureKind(err error) string {
	if kind, ok := core.KindOf(err); ok {
		return kind.String()
	}
	return "other"
}

var _ dashboard.Observer = (*Collector)(nil)
