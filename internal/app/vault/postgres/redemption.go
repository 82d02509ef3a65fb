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

type RedemptionStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewRedemptionStorage(obs *observability.Observability, db orm.DB) *RedemptionStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "roda_redemption_storage_error_counter",
		Help: "",
	})
	return &RedemptionStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

// Insert writes one settled round. A round settles exactly once, so a
// conflicting insert indicates replayed input and is dropped.
func (s *RedemptionStorage) Insert(model *models.Redemption) error {
	if model == nil {
		s.log.Warnf("trying to insert nil redemption model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to insert redemption %v", model)
	}
	if res.RowsAffected() == 0 {
		s.log.WithField("redemption_row", model).Debugf("redemption already present")
	}
	return nil
}

func (s *RedemptionStorage) Get(circleID string, quotaID, roundIndex int) (*models.Redemption, error) {
	row := &models.Redemption{CircleID: circleID, QuotaID: quotaID, RoundIndex: roundIndex}
	err := s.db.Model(row).WherePK().Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch redemption %s/%d/%d", circleID, quotaID, roundIndex)
	}
	return row, nil
}

// ListByQuota returns the settled rounds of one quota, oldest first.
// The winners form the quota's redemption-exclusion set.
func (s *RedemptionStorage) ListByQuota(circleID string, quotaID int) ([]models.Redemption, error) {
	var rows []models.Redemption
	err := s.db.Model(&rows).
		Where("circle_id=?", circleID).
		Where("quota_id=?", quotaID).
		Order("round_index ASC").
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list redemptions of %s/%d", circleID, quotaID)
	}
	return rows, nil
}
