// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// +build slowtest

package component_test

import (
	"os"
	"testing"

	"github.com/go-pg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodafin/roda/component"
	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/app/vault"
	"github.com/rodafin/roda/internal/app/vault/postgres"
	"github.com/rodafin/roda/internal/models"
	"github.com/rodafin/roda/internal/testutils"
	"github.com/rodafin/roda/observability"
)

var (
	db  *pg.DB
	cfg *configuration.Configuration
	obs *observability.Observability
)

func TestMain(m *testing.M) {
	var poolCleaner func()
	db, _, poolCleaner = testutils.SetupDB("../scripts/migrations")
	cfg = configuration.Default()
	obs = observability.Make(cfg)

	retCode := m.Run()
	poolCleaner()
	os.Exit(retCode)
}

func TestStorer_RecordsFullChangeSet(t *testing.T) {
	storer := component.NewStorer(cfg, obs, db)

	storer.Record(&vault.ChangeSet{
		Circle: &models.Circle{
			CircleID:          "stored-circle",
			Name:              "stored",
			Creator:           "creator",
			TargetValue:       1000,
			TotalInstallments: 10,
			InstallmentAmount: 100,
			NumUsers:          9,
			NumRounds:         9,
			StartTime:         1_000_000_000,
			Duration:          7776000,
			RoundDuration:     864000,
			QuotaCapEarly:     3,
			QuotaCapMiddle:    3,
			QuotaCapLate:      3,
			Status:            "ACTIVE",
			EnrolledCount:     1,
		},
		Positions: []models.Position{{
			CircleID:          "stored-circle",
			Owner:             "alice",
			TargetValue:       1000,
			TotalInstallments: 10,
			InstallmentsPaid:  1,
			TotalPaid:         100,
			Status:            "ACTIVE",
		}},
		Snapshot: &models.Snapshot{
			CircleID:      "stored-circle",
			Pot:           100,
			SnapshottedAt: 1_000_864_001,
			DrawRequestID: "stored-req",
		},
		Entries: []models.SnapshotEntry{{
			CircleID:    "stored-circle",
			Participant: "alice",
			Balance:     100,
		}},
		DrawRequests: []models.DrawRequest{{
			RequestID:   "stored-req",
			CircleID:    "stored-circle",
			Candidates:  "alice",
			RequestedAt: 1_000_864_001,
		}},
		Claims: []models.ClaimAccount{{
			CircleID: "stored-circle",
			Owner:    "alice",
			Balance:  100,
		}},
	})

	circles := postgres.NewCircleStorage(obs, db)
	circle, err := circles.Get("stored-circle")
	require.NoError(t, err)
	require.NotNil(t, circle)
	assert.Equal(t, 1, circle.EnrolledCount)

	positions, err := postgres.NewPositionStorage(obs, db).List("stored-circle")
	require.NoError(t, err)
	require.Len(t, positions, 1)

	snap, err := postgres.NewSnapshotStorage(obs, db).Get("stored-circle", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "stored-req", snap.DrawRequestID)

	req, err := postgres.NewDrawRequestStorage(obs, db).Get("stored-req")
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Candidates)

	claims, err := postgres.NewClaimStorage(obs, db).List("stored-circle")
	require.NoError(t, err)
	require.Len(t, claims, 1)
}

func TestStorer_NilChangeSet(t *testing.T) {
	storer := component.NewStorer(cfg, obs, db)
	storer.Record(nil)
}
