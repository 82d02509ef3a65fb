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

type ClaimStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewClaimStorage(obs *observability.Observability, db orm.DB) *ClaimStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "roda_claim_storage_error_counter",
		Help: "",
	})
	return &ClaimStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

// Upsert writes the current claim balance of one account. Balances are
// written as absolute values, so replays are harmless.
func (s *ClaimStorage) Upsert(model *models.ClaimAccount) error {
	if model == nil {
		s.log.Warnf("trying to upsert nil claim account model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("(circle_id, owner) DO UPDATE").
		Set("balance=EXCLUDED.balance").
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to upsert claim account %v", model)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("claim_row", model).Errorf("failed to upsert claim account")
		return errors.New("failed to upsert, affected is 0")
	}
	return nil
}

func (s *ClaimStorage) List(circleID string) ([]models.ClaimAccount, error) {
	var rows []models.ClaimAccount
	err := s.db.Model(&rows).
		Where("circle_id=?", circleID).
		Order("owner ASC").
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list claim accounts of circle %s", circleID)
	}
	return rows, nil
}
