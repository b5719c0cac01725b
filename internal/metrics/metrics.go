// Package metrics collects operational counters and gauges for the running
// server and renders them in the Prometheus text exposition format. The
// core has no HTTP or heartbeat surface (§1 Non-goals), so the
// rendered text is logged periodically rather than served.
package metrics

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics bundles the counters and gauges the orchestrator and world layers
// update as they run.
type Metrics struct {
	registry *prometheus.Registry

	SessionsAccepted prometheus.Counter
	PlayersOnline    prometheus.Gauge
	IDsInUse         prometheus.Gauge
	BytesStreamed    prometheus.Counter
	BlocksPlaced     prometheus.Counter
	WorldSaves       prometheus.Counter
}

// New builds and registers the metric set against a fresh, pedantic
// registry.
func New() *Metrics {
	reg := prometheus.NewPedanticRegistry()
	m := &Metrics{
		registry: reg,
		SessionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockworld_sessions_accepted_total",
			Help: "Total TCP connections accepted.",
		}),
		PlayersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blockworld_players_online",
			Help: "Current count of identified players.",
		}),
		IDsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blockworld_ids_in_use",
			Help: "Current count of assigned player ids.",
		}),
		BytesStreamed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockworld_level_bytes_streamed_total",
			Help: "Total compressed level bytes streamed to clients.",
		}),
		BlocksPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockworld_blocks_set_total",
			Help: "Total client SetBlock requests handled.",
		}),
		WorldSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockworld_world_saves_total",
			Help: "Total world persistence writes.",
		}),
	}
	reg.MustRegister(
		m.SessionsAccepted,
		m.PlayersOnline,
		m.IDsInUse,
		m.BytesStreamed,
		m.BlocksPlaced,
		m.WorldSaves,
	)
	return m
}

// Render gathers every registered metric family and renders it in the
// Prometheus text exposition format.
func (m *Metrics) Render() (string, error) {
	mfs, err := m.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("metrics: gather: %w", err)
	}

	var buf bytes.Buffer
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("metrics: render: %w", err)
		}
	}
	return buf.String(), nil
}

// RunPeriodicLog renders and logs a metrics snapshot every interval until
// ctx is canceled.
func (m *Metrics) RunPeriodicLog(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			text, err := m.Render()
			if err != nil {
				log.Error("render metrics", "err", err)
				continue
			}
			log.Info("metrics snapshot", "metrics", text)
		}
	}
}
