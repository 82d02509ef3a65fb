// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package component

import (
	"github.com/go-pg/pg"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/app/vault"
	"github.com/rodafin/roda/internal/app/vault/postgres"
	"github.com/rodafin/roda/internal/pkg/cycle"
	"github.com/rodafin/roda/observability"
)

// Storer persists the change set of each vault operation. All rows of
// one change set land in a single transaction; a failing store is
// retried until the configured attempt budget runs out.
type Storer struct {
	cfg *configuration.Configuration
	obs *observability.Observability
	db  *pg.DB

	storedCounter prometheus.Counter
}

func NewStorer(cfg *configuration.Configuration, obs *observability.Observability, db *pg.DB) *Storer {
	return &Storer{
		cfg: cfg,
		obs: obs,
		db:  db,
		storedCounter: obs.Counter(prometheus.CounterOpts{
			Name: "roda_stored_change_sets_total",
			Help: "Number of change sets persisted.",
		}),
	}
}

func (s *Storer) Record(cs *vault.ChangeSet) {
	if cs == nil {
		return
	}
	log := s.obs.Log()

	cycle.UntilError(func() error {
		err := s.db.RunInTransaction(func(tx *pg.Tx) error {
			if cs.Circle != nil {
				circles := postgres.NewCircleStorage(s.obs, tx)
				if err := circles.Upsert(cs.Circle); err != nil {
					return err
				}
			}

			positions := postgres.NewPositionStorage(s.obs, tx)
			for i := range cs.Positions {
				if err := positions.Upsert(&cs.Positions[i]); err != nil {
					return err
				}
			}

			snapshots := postgres.NewSnapshotStorage(s.obs, tx)
			if cs.Snapshot != nil {
				if err := snapshots.Upsert(cs.Snapshot); err != nil {
					return err
				}
			}
			for i := range cs.Entries {
				if err := snapshots.InsertEntry(&cs.Entries[i]); err != nil {
					return err
				}
			}

			draws := postgres.NewDrawRequestStorage(s.obs, tx)
			for i := range cs.DrawRequests {
				if err := draws.Upsert(&cs.DrawRequests[i]); err != nil {
					return err
				}
			}

			if cs.Redemption != nil {
				redemptions := postgres.NewRedemptionStorage(s.obs, tx)
				if err := redemptions.Insert(cs.Redemption); err != nil {
					return err
				}
			}

			claims := postgres.NewClaimStorage(s.obs, tx)
			for i := range cs.Claims {
				if err := claims.Upsert(&cs.Claims[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Error(err)
		}
		return err
	}, s.cfg.DB.AttemptInterval, s.cfg.DB.Attempts)

	s.storedCounter.Inc()
	log.Debug("change set successfully stored")
}
