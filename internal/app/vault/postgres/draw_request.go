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

type DrawRequestStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewDrawRequestStorage(obs *observability.Observability, db orm.DB) *DrawRequestStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "roda_draw_request_storage_error_counter",
		Help: "",
	})
	return &DrawRequestStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

// Upsert writes a draw request. Abandonment and fulfillment both arrive
// as upserts of the same request id.
func (s *DrawRequestStorage) Upsert(model *models.DrawRequest) error {
	if model == nil {
		s.log.Warnf("trying to upsert nil draw request model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("(request_id) DO UPDATE").
		Set(`
			completed=EXCLUDED.completed,
			draw_order=EXCLUDED.draw_order,
			seed=EXCLUDED.seed,
			fulfilled_at=EXCLUDED.fulfilled_at,
			abandoned=EXCLUDED.abandoned`).
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to upsert draw request %v", model)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("draw_request_row", model).Errorf("failed to upsert draw request")
		return errors.New("failed to upsert, affected is 0")
	}
	return nil
}

func (s *DrawRequestStorage) Get(requestID string) (*models.DrawRequest, error) {
	row := &models.DrawRequest{RequestID: requestID}
	err := s.db.Model(row).WherePK().Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch draw request %s", requestID)
	}
	return row, nil
}
