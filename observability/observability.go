// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rodafin/roda/configuration"
)

func Make(cfg *configuration.Configuration) *Observability {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warnf("unknown log level %q, falling back to info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Observability{
		log:      log,
		metrics:  prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter),
		gauges:   make(map[string]prometheus.Gauge),
	}
}

type Observability struct {
	log      *logrus.Logger
	metrics  *prometheus.Registry
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts) prometheus.Counter {
	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounter(opts)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGauge(opts)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}

// VaultMetrics counts the mutating operations of one circle vault.
type VaultMetrics struct {
	Enrollments  prometheus.Counter
	Installments prometheus.Counter
	Exits        prometheus.Counter
	Snapshots    prometheus.Counter
	Redemptions  prometheus.Counter
}

func MakeVaultMetrics(obs *Observability) *VaultMetrics {
	return &VaultMetrics{
		Enrollments: obs.Counter(prometheus.CounterOpts{
			Name: "roda_vault_enrollments_total",
			Help: "Number of successful enrollments.",
		}),
		Installments: obs.Counter(prometheus.CounterOpts{
			Name: "roda_vault_installments_total",
			Help: "Number of installment payments collected.",
		}),
		Exits: obs.Counter(prometheus.CounterOpts{
			Name: "roda_vault_exits_total",
			Help: "Number of early exits settled.",
		}),
		Snapshots: obs.Counter(prometheus.CounterOpts{
			Name: "roda_vault_snapshots_total",
			Help: "Number of window snapshots taken.",
		}),
		Redemptions: obs.Counter(prometheus.CounterOpts{
			Name: "roda_vault_redemptions_total",
			Help: "Number of round pots redeemed.",
		}),
	}
}
