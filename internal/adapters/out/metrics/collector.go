// Package metrics exports kiosk lifecycle counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kiosk"

// Collector implements ports.Metrics on a dedicated Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	sweeps      prometheus.Counter
	sweepOrders *prometheus.CounterVec
	assets      *prometheus.CounterVec
	redemptions *prometheus.CounterVec
}

// NewCollector registers the kiosk counters plus the Go and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Reclamation sweeps run.",
		}),
		sweepOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_orders_total",
			Help:      "Orders handled by reclamation sweeps, by result.",
		}, []string{"result"}),
		assets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaimed_assets_total",
			Help:      "Assets visited during reclamation, by action.",
		}, []string{"action"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickup_redemptions_total",
			Help:      "Pickup code redemption attempts, by outcome.",
		}, []string{"outcome"}),
	}
	c.registry.MustRegister(
		c.sweeps, c.sweepOrders, c.assets, c.redemptions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) SweepFinished(found, expired, reclaimed, failed int) {
	c.sweeps.Inc()
	c.sweepOrders.WithLabelValues("found").Add(float64(found))
	c.sweepOrders.WithLabelValues("expired").Add(float64(expired))
	c.sweepOrders.WithLabelValues("reclaimed").Add(float64(reclaimed))
	c.sweepOrders.WithLabelValues("failed").Add(float64(failed))
}

func (c *Collector) AssetDeleted() {
	c.assets.WithLabelValues("deleted").Inc()
}

func (c *Collector) AssetShared() {
	c.assets.WithLabelValues("kept_shared").Inc()
}

func (c *Collector) Redemption(outcome string) {
	c.redemptions.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry for gathering in tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
