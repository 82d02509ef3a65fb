// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package component

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/app/factory"
	"github.com/rodafin/roda/internal/app/vault"
	"github.com/rodafin/roda/observability"
)

// Sweeper periodically walks every circle and closes each window that
// became closeable, either by deadline or by pot sufficiency. It also
// re-requests draws whose oracle request timed out.
type Sweeper struct {
	obs     *observability.Observability
	factory *factory.Factory
	cron    *cron.Cron
	timeout int64

	closedCounter  prometheus.Counter
	retriedCounter prometheus.Counter
}

func NewSweeper(cfg *configuration.Configuration, obs *observability.Observability, f *factory.Factory) (*Sweeper, error) {
	s := &Sweeper{
		obs:     obs,
		factory: f,
		cron:    cron.New(),
		timeout: int64(cfg.Oracle.RequestTimeout.Seconds()),
		closedCounter: obs.Counter(prometheus.CounterOpts{
			Name: "roda_sweeper_windows_closed_total",
			Help: "Number of windows closed by the sweeper.",
		}),
		retriedCounter: obs.Counter(prometheus.CounterOpts{
			Name: "roda_sweeper_draws_retried_total",
			Help: "Number of draw requests re-requested after timeout.",
		}),
	}
	if _, err := s.cron.AddFunc(cfg.Sweeper.Schedule, s.sweep); err != nil {
		return nil, errors.Wrap(err, "failed to schedule sweep")
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	log := s.obs.Log()
	for _, c := range s.factory.Circles() {
		v := c.Vault
		for quotaID := vault.QuotaEarly; quotaID <= vault.QuotaLate; quotaID++ {
			for round := 0; round < v.RoundsPerQuota(); round++ {
				if v.CanCloseWindow(quotaID, round) {
					if err := v.RequestCloseWindow(quotaID, round); err != nil {
						log.WithField("circle", c.ID).
							WithField("quota", quotaID).
							WithField("round", round).
							Error(errors.Wrap(err, "failed to close window"))
						continue
					}
					s.closedCounter.Inc()
					log.WithField("circle", c.ID).
						WithField("quota", quotaID).
						WithField("round", round).
						Info("window closed")
				}
				switch err := v.RetryDraw(quotaID, round, s.timeout); err {
				case nil:
					s.retriedCounter.Inc()
					log.WithField("circle", c.ID).
						WithField("quota", quotaID).
						WithField("round", round).
						Warn("draw request timed out, re-requested")
				case vault.ErrNotSnapshotted, vault.ErrAlreadySettled,
					vault.ErrDrawAlreadyComplete, vault.ErrRetryTooEarly:
					// nothing to retry
				default:
					log.WithField("circle", c.ID).
						WithField("quota", quotaID).
						WithField("round", round).
						Error(errors.Wrap(err, "failed to retry draw"))
				}
			}
		}
	}
}
