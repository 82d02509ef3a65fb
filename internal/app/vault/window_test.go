// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodafin/roda/internal/app/ledger"
	"github.com/rodafin/roda/internal/app/vault"
	"github.com/rodafin/roda/internal/models"
)

func TestCanCloseWindow_BeforeDeadline(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	// pot 300 < target 1000, deadline (day 10) not reached
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaEarly, 0))
}

func TestCanCloseWindow_AfterDeadline(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.at(10*day + 1)
	assert.True(t, f.vault.CanCloseWindow(vault.QuotaEarly, 0))
}

func TestCanCloseWindow_EarlyCloseOnSufficiency(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	// day 1, far from the deadline: drive the pot to 1200 >= 1000
	f.at(1 * day)
	for _, m := range earlyMembers {
		for i := 0; i < 3; i++ {
			require.NoError(t, f.vault.PayInstallment(m))
		}
	}
	assert.True(t, f.vault.CanCloseWindow(vault.QuotaEarly, 0))
}

func TestCanCloseWindow_Sequencing(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.enrollQuota(t, vault.QuotaMiddle, middleMembers)

	// every deadline long gone, still nothing but (0,0) may close
	f.at(200 * day)
	assert.True(t, f.vault.CanCloseWindow(vault.QuotaEarly, 0))
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaEarly, 1), "needs round 0 settled")
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaEarly, 2))
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaMiddle, 0), "needs all early rounds settled")
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaLate, 0))
}

func TestCanCloseWindow_QuotaOpensAfterLowerQuotaSettles(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.enrollQuota(t, vault.QuotaMiddle, middleMembers)

	f.at(200 * day)
	f.settleRound(t, vault.QuotaEarly, 0, "seed-0")
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaMiddle, 0))
	f.settleRound(t, vault.QuotaEarly, 1, "seed-1")
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaMiddle, 0))
	f.settleRound(t, vault.QuotaEarly, 2, "seed-2")
	assert.True(t, f.vault.CanCloseWindow(vault.QuotaMiddle, 0))
}

func TestCanCloseWindow_OutOfRange(t *testing.T) {
	f := newFixture(t)
	f.at(200 * day)
	assert.False(t, f.vault.CanCloseWindow(3, 0))
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaEarly, 3))
	assert.False(t, f.vault.CanCloseWindow(vault.QuotaEarly, -1))
}

func TestRequestCloseWindow(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.at(10*day + 1)

	require.NoError(t, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))

	snap, ok := f.vault.SnapshotOf(vault.QuotaEarly, 0)
	require.True(t, ok)
	assert.Equal(t, earlyMembers, snap.Participants)
	assert.Equal(t, int64(300), snap.Pot)
	assert.False(t, snap.Settled)

	// claim transfers are frozen for the circle
	assert.Equal(t, ledger.ErrFrozen, f.claims.Transfer("alice", "bob", 10))

	// draw request is pending, not complete
	draw, err := f.vault.DrawOf(vault.QuotaEarly, 0)
	require.NoError(t, err)
	assert.False(t, draw.Completed)
	assert.Nil(t, draw.Order)

	// durable rows emitted
	cs := f.rec.Last()
	require.NotNil(t, cs.Snapshot)
	assert.Equal(t, int64(300), cs.Snapshot.Pot)
	assert.Len(t, cs.Entries, 3)
	require.Len(t, cs.DrawRequests, 1)
	assert.Equal(t, "alice,bob,carol", cs.DrawRequests[0].Candidates)
}

func TestRequestCloseWindow_Errors(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)

	assert.Equal(t, vault.ErrInvalidQuota, f.vault.RequestCloseWindow(5, 0))
	assert.Equal(t, vault.ErrInvalidRoundIndex, f.vault.RequestCloseWindow(vault.QuotaEarly, 3))
	assert.Equal(t, vault.ErrWindowNotReady, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))

	f.at(10*day + 1)
	require.NoError(t, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))
	assert.Equal(t, vault.ErrAlreadySnapshotted, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))

	require.NoError(t, f.vault.SetStatus(creator, vault.StatusFrozen))
	assert.Equal(t, vault.ErrCircleNotActive, f.vault.RequestCloseWindow(vault.QuotaEarly, 1))
}

func TestRequestCloseWindow_NoActiveParticipants(t *testing.T) {
	f := newFixture(t)
	f.enroll(t, "alice", vault.QuotaEarly)
	require.NoError(t, f.vault.ExitEarly("alice", installment))

	f.at(10*day + 1)
	err := f.vault.RequestCloseWindow(vault.QuotaEarly, 0)
	assert.Equal(t, vault.ErrNoActiveParticipants, err)

	// no partial snapshot persists and transfers stay unfrozen
	_, ok := f.vault.SnapshotOf(vault.QuotaEarly, 0)
	assert.False(t, ok)
	assert.False(t, f.claims.Frozen())
}

func TestSnapshotImmutability(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.at(10*day + 1)
	require.NoError(t, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))

	// a later balance change does not touch the recorded pot
	require.NoError(t, f.vault.PayInstallment("bob"))

	snap, ok := f.vault.SnapshotOf(vault.QuotaEarly, 0)
	require.True(t, ok)
	assert.Equal(t, int64(300), snap.Pot)
	assert.Equal(t, int64(100), snap.Balances["bob"])

	pot, err := f.vault.LivePot(vault.QuotaEarly, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(300), pot)
}

func TestNoteDrawFulfilled(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.at(10*day + 1)
	require.NoError(t, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))
	draw, err := f.vault.DrawOf(vault.QuotaEarly, 0)
	require.NoError(t, err)

	seed := []byte("seed")
	assert.Equal(t, vault.ErrDrawNotComplete, f.vault.NoteDrawFulfilled(draw.RequestID, seed))
	assert.Equal(t, vault.ErrUnknownDrawRequest, f.vault.NoteDrawFulfilled(uuid.New(), seed))

	require.NoError(t, f.draws.Fulfill(draw.RequestID, seed))
	require.NoError(t, f.vault.NoteDrawFulfilled(draw.RequestID, seed))

	// the completed order and seed land as a durable row
	cs := f.rec.Last()
	require.Len(t, cs.DrawRequests, 1)
	row := cs.DrawRequests[0]
	assert.Equal(t, draw.RequestID.String(), row.RequestID)
	assert.True(t, row.Completed)
	assert.Equal(t, seed, row.Seed)
	assert.NotZero(t, row.FulfilledAt)

	draw, err = f.vault.DrawOf(vault.QuotaEarly, 0)
	require.NoError(t, err)
	assert.Equal(t, models.JoinAddresses(draw.Order), row.DrawOrder)
}

func TestRetryDraw(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)
	f.at(10*day + 1)
	require.NoError(t, f.vault.RequestCloseWindow(vault.QuotaEarly, 0))

	timeout := int64(3600)
	assert.Equal(t, vault.ErrRetryTooEarly, f.vault.RetryDraw(vault.QuotaEarly, 0, timeout))

	stale, err := f.vault.DrawOf(vault.QuotaEarly, 0)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.vault.RetryDraw(vault.QuotaEarly, 0, timeout))

	fresh, err := f.vault.DrawOf(vault.QuotaEarly, 0)
	require.NoError(t, err)
	assert.NotEqual(t, stale.RequestID, fresh.RequestID)

	// late fulfillment of the abandoned request is rejected
	err = f.draws.Fulfill(stale.RequestID, []byte("late seed"))
	assert.Error(t, err)
	assert.False(t, f.draws.Completed(stale.RequestID))

	// the replacement fulfills normally
	require.NoError(t, f.draws.Fulfill(fresh.RequestID, []byte("seed")))
	assert.True(t, f.draws.Completed(fresh.RequestID))
}

func TestRetryDraw_Errors(t *testing.T) {
	f := newFixture(t)
	f.enrollQuota(t, vault.QuotaEarly, earlyMembers)

	assert.Equal(t, vault.ErrNotSnapshotted, f.vault.RetryDraw(vault.QuotaEarly, 0, 60))

	f.at(10*day + 1)
	f.settleRound(t, vault.QuotaEarly, 0, "seed")
	assert.Equal(t, vault.ErrAlreadySettled, f.vault.RetryDraw(vault.QuotaEarly, 0, 60))

	f.at(20*day + 1)
	require.NoError(t, f.vault.RequestCloseWindow(vault.QuotaEarly, 1))
	draw, err := f.vault.DrawOf(vault.QuotaEarly, 1)
	require.NoError(t, err)
	require.NoError(t, f.draws.Fulfill(draw.RequestID, []byte("seed-2")))
	f.clock.Advance(2 * time.Hour)
	assert.Equal(t, vault.ErrDrawAlreadyComplete, f.vault.RetryDraw(vault.QuotaEarly, 1, 60))
}
