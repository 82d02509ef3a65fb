// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package component

import (
	"github.com/pkg/errors"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/connectivity"
	"github.com/rodafin/roda/internal/app/api"
	"github.com/rodafin/roda/internal/app/factory"
	"github.com/rodafin/roda/internal/app/ledger"
	"github.com/rodafin/roda/internal/app/vault"
	"github.com/rodafin/roda/observability"
)

type Manager struct {
	cfg  *configuration.Configuration
	obs  *observability.Observability
	conn *connectivity.Connectivity

	factory *factory.Factory

	router    *Router
	api       *api.Server
	sweeper   *Sweeper
	fulfiller *Fulfiller
}

// Prepare wires the full service: database connectivity, the shared
// payment-asset ledger, the circle factory with its postgres-backed
// recorder, the query API and the background sweeps. Circles listed in
// the configuration are created here; an invalid entry is skipped, not
// fatal.
func Prepare(cfg *configuration.Configuration) *Manager {
	obs := observability.Make(cfg)
	log := obs.Log()
	conn := connectivity.Make(cfg, obs)

	storer := NewStorer(cfg, obs, conn.PG())
	asset := ledger.New(cfg.Asset.Admin)
	fact := factory.New(asset, obs, vault.DefaultClock{}, storer)

	for _, c := range cfg.Circles {
		circle, err := fact.CreateCircle(circleParams(c))
		if err != nil {
			log.WithField("circle_name", c.Name).
				Error(errors.Wrap(err, "failed to create configured circle"))
			continue
		}
		log.WithField("circle_name", c.Name).
			WithField("circle_id", circle.ID).
			Info("circle created")
	}

	sweeper, err := NewSweeper(cfg, obs, fact)
	if err != nil {
		log.Fatal(err.Error())
	}
	fulfiller, err := NewFulfiller(cfg, obs, fact)
	if err != nil {
		log.Fatal(err.Error())
	}

	return &Manager{
		cfg:       cfg,
		obs:       obs,
		conn:      conn,
		factory:   fact,
		router:    NewRouter(cfg, obs),
		api:       api.NewServer(cfg, obs, fact),
		sweeper:   sweeper,
		fulfiller: fulfiller,
	}
}

func (m *Manager) Start() {
	m.router.Start()
	m.api.Start()
	m.sweeper.Start()
	m.fulfiller.Start()
}

func (m *Manager) Stop() {
	log := m.obs.Log()

	m.fulfiller.Stop()
	m.sweeper.Stop()
	m.api.Stop()
	m.router.Stop()

	if err := m.conn.PG().Close(); err != nil {
		log.Error(errors.Wrap(err, "failed to close db connection"))
	}
}

func circleParams(c configuration.Circle) factory.CircleParams {
	return factory.CircleParams{
		Name:              c.Name,
		Creator:           c.Creator,
		TargetValue:       c.TargetValue,
		TotalInstallments: c.TotalInstallments,
		NumUsers:          c.NumUsers,
		NumRounds:         c.NumRounds,
		ExitFeeBps:        c.ExitFeeBps,
		StartTime:         c.StartTime,
		Duration:          int64(c.Duration.Seconds()),
		RoundDuration:     int64(c.RoundDuration.Seconds()),
		QuotaCaps:         [3]int{c.QuotaCapEarly, c.QuotaCapMiddle, c.QuotaCapLate},
	}
}
