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

type SnapshotStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewSnapshotStorage(obs *observability.Observability, db orm.DB) *SnapshotStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "roda_snapshot_storage_error_counter",
		Help: "",
	})
	return &SnapshotStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

// Upsert writes the snapshot header. Pot and the captured entries are
// immutable once taken; only the settled flag and the active draw
// request change afterwards.
func (s *SnapshotStorage) Upsert(model *models.Snapshot) error {
	if model == nil {
		s.log.Warnf("trying to upsert nil snapshot model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("(circle_id, quota_id, round_index) DO UPDATE").
		Set(`
			draw_request_id=EXCLUDED.draw_request_id,
			settled=EXCLUDED.settled`).
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to upsert snapshot %v", model)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("snapshot_row", model).Errorf("failed to upsert snapshot")
		return errors.New("failed to upsert, affected is 0")
	}
	return nil
}

func (s *SnapshotStorage) InsertEntry(model *models.SnapshotEntry) error {
	if model == nil {
		s.log.Warnf("trying to insert nil snapshot entry model")
		return nil
	}
	res, err := s.db.Model(model).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return errors.Wrapf(err, "failed to insert snapshot entry %v", model)
	}
	if res.RowsAffected() == 0 {
		s.log.WithField("entry_row", model).Debugf("snapshot entry already present")
	}
	return nil
}

func (s *SnapshotStorage) Get(circleID string, quotaID, roundIndex int) (*models.Snapshot, error) {
	row := &models.Snapshot{CircleID: circleID, QuotaID: quotaID, RoundIndex: roundIndex}
	err := s.db.Model(row).WherePK().Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch snapshot %s/%d/%d", circleID, quotaID, roundIndex)
	}
	return row, nil
}

func (s *SnapshotStorage) Entries(circleID string, quotaID, roundIndex int) ([]models.SnapshotEntry, error) {
	var rows []models.SnapshotEntry
	err := s.db.Model(&rows).
		Where("circle_id=?", circleID).
		Where("quota_id=?", quotaID).
		Where("round_index=?", roundIndex).
		Order("idx ASC").
		Select()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch snapshot entries %s/%d/%d", circleID, quotaID, roundIndex)
	}
	return rows, nil
}
