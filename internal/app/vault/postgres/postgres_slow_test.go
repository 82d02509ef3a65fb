// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// +build slowtest

package postgres_test

import (
	"os"
	"testing"

	"github.com/go-pg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/app/vault/postgres"
	"github.com/rodafin/roda/internal/models"
	"github.com/rodafin/roda/internal/testutils"
	"github.com/rodafin/roda/observability"
)

var (
	db  *pg.DB
	obs *observability.Observability
)

func TestMain(m *testing.M) {
	var poolCleaner func()
	db, _, poolCleaner = testutils.SetupDB("../../../../scripts/migrations")
	obs = observability.Make(configuration.Default())

	retCode := m.Run()
	poolCleaner()
	os.Exit(retCode)
}

func circleRow(id string) *models.Circle {
	return &models.Circle{
		CircleID:          id,
		Name:              "slow-circle",
		Creator:           "creator",
		TargetValue:       1000,
		TotalInstallments: 10,
		InstallmentAmount: 100,
		NumUsers:          9,
		NumRounds:         9,
		ExitFeeBps:        100,
		StartTime:         1_000_000_000,
		Duration:          7776000,
		RoundDuration:     864000,
		QuotaCapEarly:     3,
		QuotaCapMiddle:    3,
		QuotaCapLate:      3,
		Status:            "ACTIVE",
	}
}

func TestCircleStorage(t *testing.T) {
	storage := postgres.NewCircleStorage(obs, db)

	row := circleRow("circle-1")
	require.NoError(t, storage.Upsert(row))

	// a second upsert replaces the running counters only
	row.EnrolledCount = 3
	row.SnapshotBalance = 300
	row.Status = "FROZEN"
	require.NoError(t, storage.Upsert(row))

	got, err := storage.Get("circle-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.EnrolledCount)
	assert.Equal(t, int64(300), got.SnapshotBalance)
	assert.Equal(t, "FROZEN", got.Status)
	assert.Equal(t, int64(1000), got.TargetValue)

	missing, err := storage.Get("no-such-circle")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPositionStorage(t *testing.T) {
	require.NoError(t, postgres.NewCircleStorage(obs, db).Upsert(circleRow("circle-2")))
	storage := postgres.NewPositionStorage(obs, db)

	row := &models.Position{
		CircleID:          "circle-2",
		Owner:             "alice",
		QuotaID:           0,
		TargetValue:       1000,
		TotalInstallments: 10,
		InstallmentsPaid:  1,
		TotalPaid:         100,
		Status:            "ACTIVE",
	}
	require.NoError(t, storage.Upsert(row))

	row.InstallmentsPaid = 2
	row.TotalPaid = 200
	require.NoError(t, storage.Upsert(row))

	rows, err := storage.List("circle-2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].InstallmentsPaid)
	assert.Equal(t, int64(200), rows[0].TotalPaid)
}

func TestSnapshotStorage(t *testing.T) {
	storage := postgres.NewSnapshotStorage(obs, db)

	snap := &models.Snapshot{
		CircleID:      "circle-3",
		QuotaID:       0,
		RoundIndex:    0,
		Pot:           300,
		SnapshottedAt: 1_000_864_001,
		DrawRequestID: "req-1",
	}
	require.NoError(t, storage.Upsert(snap))

	for i, p := range []string{"alice", "bob", "carol"} {
		require.NoError(t, storage.InsertEntry(&models.SnapshotEntry{
			CircleID:    "circle-3",
			QuotaID:     0,
			RoundIndex:  0,
			Participant: p,
			Idx:         i,
			Balance:     100,
		}))
	}
	// entry replays are dropped silently
	require.NoError(t, storage.InsertEntry(&models.SnapshotEntry{
		CircleID: "circle-3", Participant: "alice", Balance: 100,
	}))

	// settlement and draw replacement arrive as upserts
	snap.DrawRequestID = "req-2"
	snap.Settled = true
	require.NoError(t, storage.Upsert(snap))

	got, err := storage.Get("circle-3", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "req-2", got.DrawRequestID)
	assert.True(t, got.Settled)
	assert.Equal(t, int64(300), got.Pot)

	entries, err := storage.Entries("circle-3", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].Participant)
	assert.Equal(t, "carol", entries[2].Participant)
}

func TestDrawRequestStorage(t *testing.T) {
	storage := postgres.NewDrawRequestStorage(obs, db)

	row := &models.DrawRequest{
		RequestID:   "req-10",
		CircleID:    "circle-4",
		QuotaID:     1,
		RoundIndex:  2,
		Candidates:  "alice,bob",
		RequestedAt: 1_000_000_100,
	}
	require.NoError(t, storage.Upsert(row))

	row.Completed = true
	row.DrawOrder = "bob,alice"
	row.Seed = []byte("seed")
	row.FulfilledAt = 1_000_000_200
	require.NoError(t, storage.Upsert(row))

	got, err := storage.Get("req-10")
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, []string{"bob", "alice"}, models.SplitAddresses(got.DrawOrder))
	assert.Equal(t, []byte("seed"), got.Seed)
}

func TestRedemptionStorage(t *testing.T) {
	storage := postgres.NewRedemptionStorage(obs, db)

	row := &models.Redemption{
		CircleID:   "circle-5",
		QuotaID:    0,
		RoundIndex: 0,
		Winner:     "bob",
		Amount:     300,
		Proof:      models.RedemptionProof(0, 0, "bob", 300, 1_000_864_100),
		RedeemedAt: 1_000_864_100,
	}
	require.NoError(t, storage.Insert(row))

	// replays never overwrite a settled round
	replay := *row
	replay.Winner = "mallory"
	require.NoError(t, storage.Insert(&replay))

	got, err := storage.Get("circle-5", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Winner)

	listed, err := storage.ListByQuota("circle-5", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestClaimStorage(t *testing.T) {
	storage := postgres.NewClaimStorage(obs, db)

	row := &models.ClaimAccount{CircleID: "circle-6", Owner: "alice", Balance: 100}
	require.NoError(t, storage.Upsert(row))
	row.Balance = 0
	require.NoError(t, storage.Upsert(row))

	rows, err := storage.List("circle-6")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].Balance)
}
