// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rodafin/roda/internal/app/registry"
	"github.com/rodafin/roda/internal/models"
)

// Window/round lifecycle: OPEN -> SNAPSHOTTED -> SETTLED, no way back.
// Rounds settle in strict lexicographic order across (quota, round):
// round r needs round r-1 of its quota settled, and a quota opens only
// once every round of all lower quotas settled.

func (v *Vault) settledLocked(quotaID, roundIndex int) bool {
	snap, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]
	return ok && snap.settled
}

// closeability reports why (quotaID, roundIndex) can not close, nil if
// it can. Callers must hold v.mu.
func (v *Vault) closeability(quotaID, roundIndex int) error {
	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return ErrInvalidQuota
	}
	if roundIndex < 0 || roundIndex >= v.roundsPerQuota() {
		return ErrInvalidRoundIndex
	}
	if _, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]; ok {
		return ErrAlreadySnapshotted
	}
	if roundIndex > 0 && !v.settledLocked(quotaID, roundIndex-1) {
		return ErrWindowNotReady
	}
	for q := QuotaEarly; q < quotaID; q++ {
		for r := 0; r < v.roundsPerQuota(); r++ {
			if !v.settledLocked(q, r) {
				return ErrWindowNotReady
			}
		}
	}
	if v.now() >= v.roundDeadline(quotaID, roundIndex) {
		return nil
	}
	if v.livePotLocked(quotaID) >= v.cfg.TargetValue {
		// early close on sufficiency
		return nil
	}
	return ErrWindowNotReady
}

// eligibleLocked lists the round candidates in enrollment order: not a
// past winner of the quota, live position in the quota, nonzero claim
// balance.
func (v *Vault) eligibleLocked(quotaID int) ([]string, map[string]int64, int64) {
	var participants []string
	balances := make(map[string]int64)
	var pot int64
	for _, member := range v.members {
		if v.excluded[quotaID][member] {
			continue
		}
		if !v.active[member] {
			continue
		}
		position, ok := v.deps.Positions.Get(member)
		if !ok || position.QuotaID != quotaID || position.Status != registry.StatusActive {
			continue
		}
		balance := v.deps.Claims.BalanceOf(member)
		if balance <= 0 {
			continue
		}
		participants = append(participants, member)
		balances[member] = balance
		pot += balance
	}
	return participants, balances, pot
}

func (v *Vault) livePotLocked(quotaID int) int64 {
	_, _, pot := v.eligibleLocked(quotaID)
	return pot
}

// CanCloseWindow reports whether (quotaID, roundIndex) is closeable
// right now. It evaluates the same predicate RequestCloseWindow
// enforces.
func (v *Vault) CanCloseWindow(quotaID, roundIndex int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status != StatusActive {
		return false
	}
	return v.closeability(quotaID, roundIndex) == nil
}

// RequestCloseWindow snapshots the round: it fixes the candidate list
// and pot from the claim balances of this instant, freezes claim
// transfers for the circle, and submits the draw request. Callable by
// anyone once the close condition holds.
func (v *Vault) RequestCloseWindow(quotaID, roundIndex int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusActive {
		return ErrCircleNotActive
	}
	if err := v.closeability(quotaID, roundIndex); err != nil {
		return err
	}

	participants, balances, pot := v.eligibleLocked(quotaID)
	if len(participants) == 0 {
		return ErrNoActiveParticipants
	}

	requestID, err := v.deps.Draws.Submit(v.Address(), participants)
	if err != nil {
		return errors.Wrap(err, "failed to submit draw request")
	}
	if err := v.deps.Claims.SetFrozen(v.Address(), true); err != nil {
		return errors.Wrap(err, "failed to freeze claim transfers")
	}

	now := v.now()
	snap := &windowSnapshot{
		participants:  participants,
		balances:      balances,
		pot:           pot,
		snapshottedAt: now,
		requestID:     requestID,
		requestedAt:   now,
	}
	v.snapshots[windowKey{quota: quotaID, round: roundIndex}] = snap

	if v.metrics != nil {
		v.metrics.Snapshots.Inc()
	}

	entries := make([]models.SnapshotEntry, 0, len(participants))
	for i, p := range participants {
		entries = append(entries, models.SnapshotEntry{
			CircleID:    v.cfg.ID,
			QuotaID:     quotaID,
			RoundIndex:  roundIndex,
			Participant: p,
			Idx:         i,
			Balance:     balances[p],
		})
	}
	v.record(&ChangeSet{
		Circle:   v.circleRow(),
		Snapshot: v.snapshotRow(quotaID, roundIndex, snap),
		Entries:  entries,
		DrawRequests: []models.DrawRequest{{
			RequestID:   requestID.String(),
			CircleID:    v.cfg.ID,
			QuotaID:     quotaID,
			RoundIndex:  roundIndex,
			Candidates:  models.JoinAddresses(participants),
			RequestedAt: now,
		}},
	})
	return nil
}

// RetryDraw replaces the draw request of a snapshotted, unsettled round
// whose fulfillment has been pending longer than timeoutSeconds. The
// stale request is abandoned so a late fulfillment can not race the
// replacement.
func (v *Vault) RetryDraw(quotaID, roundIndex int, timeoutSeconds int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return ErrInvalidQuota
	}
	snap, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]
	if !ok {
		return ErrNotSnapshotted
	}
	if snap.settled {
		return ErrAlreadySettled
	}
	if v.deps.Draws.Completed(snap.requestID) {
		return ErrDrawAlreadyComplete
	}
	now := v.now()
	if now < snap.requestedAt+timeoutSeconds {
		return ErrRetryTooEarly
	}

	if err := v.deps.Draws.Abandon(v.Address(), snap.requestID); err != nil {
		return errors.Wrap(err, "failed to abandon stale draw request")
	}
	replacement, err := v.deps.Draws.Submit(v.Address(), snap.participants)
	if err != nil {
		return errors.Wrap(err, "failed to resubmit draw request")
	}

	stale := snap.requestID
	snap.requestID = replacement
	snap.requestedAt = now

	v.record(&ChangeSet{
		Snapshot: v.snapshotRow(quotaID, roundIndex, snap),
		DrawRequests: []models.DrawRequest{
			{
				RequestID:   stale.String(),
				CircleID:    v.cfg.ID,
				QuotaID:     quotaID,
				RoundIndex:  roundIndex,
				Candidates:  models.JoinAddresses(snap.participants),
				RequestedAt: snap.snapshottedAt,
				Abandoned:   true,
			},
			{
				RequestID:   replacement.String(),
				CircleID:    v.cfg.ID,
				QuotaID:     quotaID,
				RoundIndex:  roundIndex,
				Candidates:  models.JoinAddresses(snap.participants),
				RequestedAt: now,
			},
		},
	})
	return nil
}

// NoteDrawFulfilled records the durable state of requestID once the
// oracle reports completion. Fulfillment happens out of band, so the
// completed order and seed reach storage through this hook rather than
// through a vault operation.
func (v *Vault) NoteDrawFulfilled(requestID uuid.UUID, seed []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var found *windowSnapshot
	var key windowKey
	for k, snap := range v.snapshots {
		if snap.requestID == requestID {
			found, key = snap, k
			break
		}
	}
	if found == nil {
		return ErrUnknownDrawRequest
	}
	if !v.deps.Draws.Completed(requestID) {
		return ErrDrawNotComplete
	}
	order, err := v.deps.Draws.Order(requestID)
	if err != nil {
		return errors.Wrap(err, "failed to read draw order")
	}

	v.record(&ChangeSet{
		DrawRequests: []models.DrawRequest{{
			RequestID:   requestID.String(),
			CircleID:    v.cfg.ID,
			QuotaID:     key.quota,
			RoundIndex:  key.round,
			Candidates:  models.JoinAddresses(found.participants),
			Completed:   true,
			DrawOrder:   models.JoinAddresses(order),
			Seed:        append([]byte(nil), seed...),
			RequestedAt: found.requestedAt,
			FulfilledAt: v.now(),
		}},
	})
	return nil
}

func (v *Vault) snapshotRow(quotaID, roundIndex int, snap *windowSnapshot) *models.Snapshot {
	return &models.Snapshot{
		CircleID:      v.cfg.ID,
		QuotaID:       quotaID,
		RoundIndex:    roundIndex,
		Pot:           snap.pot,
		SnapshottedAt: snap.snapshottedAt,
		DrawRequestID: snap.requestID.String(),
		Settled:       snap.settled,
	}
}
