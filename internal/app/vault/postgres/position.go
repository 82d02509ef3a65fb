// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package postgres

import (
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rodafin/roda/internal/models"
	"github.com/rodafin/roda/observability"
)

type PositionStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewPositionStorage(obs *observability.Observability, db orm.DB) *PositionStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "roda_position_storage_error_counter",
		Help: "",
	})
	return &PositionStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (s *PositionStorage) Upsert(model *models.Position) error {
	if model == nil {
		s.log.Warnf("trying to upsert nil position model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("(circle_id, owner) DO UPDATE").
		Set(`
			installments_paid=EXCLUDED.installments_paid,
			total_paid=EXCLUDED.total_paid,
			status=EXCLUDED.status`).
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to upsert position %v", model)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("position_row", model).Errorf("failed to upsert position")
		return errors.New("failed to upsert, affected is 0")
	}
	return nil
}

func (s *PositionStorage) List(circleID string) ([]models.Position, error) {
	var rows []models.Position
	err := s.db.Model(&rows).
		Where("circle_id=?", circleID).
		Order("owner ASC").
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list positions of circle %s", circleID)
	}
	return rows, nil
}
