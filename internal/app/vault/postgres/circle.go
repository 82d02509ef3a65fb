// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package postgres persists the durable rows vault operations emit.
// Each storage takes an orm.DB so the storer can hand it a transaction.
package postgres

import (
	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rodafin/roda/internal/models"
	"github.com/rodafin/roda/observability"
)

type CircleStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewCircleStorage(obs *observability.Observability, db orm.DB) *CircleStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "roda_circle_storage_error_counter",
		Help: "",
	})
	return &CircleStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

// Upsert writes the circle row, replacing the mutable counters on
// conflict. The immutable creation parameters are written once and
// never touched afterwards.
func (s *CircleStorage) Upsert(model *models.Circle) error {
	if model == nil {
		s.log.Warnf("trying to upsert nil circle model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("(circle_id) DO UPDATE").
		Set(`
			status=EXCLUDED.status,
			enrolled_count=EXCLUDED.enrolled_count,
			quota_filled_early=EXCLUDED.quota_filled_early,
			quota_filled_middle=EXCLUDED.quota_filled_middle,
			quota_filled_late=EXCLUDED.quota_filled_late,
			snapshot_balance=EXCLUDED.snapshot_balance,
			snapshot_claims_supply=EXCLUDED.snapshot_claims_supply`).
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to upsert circle %v", model)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("circle_row", model).Errorf("failed to upsert circle")
		return errors.New("failed to upsert, affected is 0")
	}
	return nil
}

func (s *CircleStorage) Get(circleID string) (*models.Circle, error) {
	row := &models.Circle{CircleID: circleID}
	err := s.db.Model(row).WherePK().Select()
	if err == pg.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch circle %s", circleID)
	}
	return row, nil
}

func (s *CircleStorage) List() ([]models.Circle, error) {
	var rows []models.Circle
	err := s.db.Model(&rows).Order("circle_id ASC").Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list circles")
	}
	return rows, nil
}
