// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package component

import (
	"crypto/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/app/factory"
	"github.com/rodafin/roda/observability"
)

// Fulfiller stands in for an external randomness beacon. It fulfills
// pending draw requests that have aged past the configured delay with
// a fresh random seed; the delay imitates beacon latency so the rest
// of the system genuinely runs the asynchronous path.
type Fulfiller struct {
	obs     *observability.Observability
	factory *factory.Factory
	cron    *cron.Cron
	delay   time.Duration

	fulfilledCounter prometheus.Counter
}

func NewFulfiller(cfg *configuration.Configuration, obs *observability.Observability, f *factory.Factory) (*Fulfiller, error) {
	ff := &Fulfiller{
		obs:     obs,
		factory: f,
		cron:    cron.New(),
		delay:   cfg.Oracle.FulfillDelay,
		fulfilledCounter: obs.Counter(prometheus.CounterOpts{
			Name: "roda_oracle_fulfillments_total",
			Help: "Number of draw requests fulfilled.",
		}),
	}
	if _, err := ff.cron.AddFunc(cfg.Oracle.Schedule, ff.fulfill); err != nil {
		return nil, errors.Wrap(err, "failed to schedule fulfillment sweep")
	}
	return ff, nil
}

func (ff *Fulfiller) Start() {
	ff.cron.Start()
}

func (ff *Fulfiller) Stop() {
	<-ff.cron.Stop().Done()
}

func (ff *Fulfiller) fulfill() {
	log := ff.obs.Log()
	cutoff := time.Now().Add(-ff.delay).Unix()
	for _, c := range ff.factory.Circles() {
		for _, req := range c.Draws.Pending(cutoff) {
			seed := make([]byte, 32)
			if _, err := rand.Read(seed); err != nil {
				log.Error(errors.Wrap(err, "failed to read random seed"))
				return
			}
			if err := c.Draws.Fulfill(req.ID, seed); err != nil {
				log.WithField("circle", c.ID).
					WithField("request", req.ID.String()).
					Error(errors.Wrap(err, "failed to fulfill draw request"))
				continue
			}
			// the oracle answered out of band; land the completed
			// order in storage through the vault
			if err := c.Vault.NoteDrawFulfilled(req.ID, seed); err != nil {
				log.WithField("circle", c.ID).
					WithField("request", req.ID.String()).
					Error(errors.Wrap(err, "failed to record draw fulfillment"))
			}
			ff.fulfilledCounter.Inc()
			log.WithField("circle", c.ID).
				WithField("request", req.ID.String()).
				Info("draw request fulfilled")
		}
	}
}
