// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault

import (
	"github.com/google/uuid"

	"github.com/rodafin/roda/internal/app/registry"
)

// Read-only query surface. Everything here is side-effect free.

// PositionOf returns a copy of addr's position record.
func (v *Vault) PositionOf(addr string) (registry.Position, bool) {
	return v.deps.Positions.Get(addr)
}

// CurrentRound is the lowest round of quotaID that has not settled, or
// roundsPerQuota once the whole window is done.
func (v *Vault) CurrentRound(quotaID int) (int, error) {
	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return 0, ErrInvalidQuota
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for r := 0; r < v.roundsPerQuota(); r++ {
		if !v.settledLocked(quotaID, r) {
			return r, nil
		}
	}
	return v.roundsPerQuota(), nil
}

// LivePot is the pot of (quotaID, roundIndex): the frozen snapshot pot
// once the round is snapshotted, otherwise the sum of the currently
// eligible claim balances.
func (v *Vault) LivePot(quotaID, roundIndex int) (int64, error) {
	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return 0, ErrInvalidQuota
	}
	if roundIndex < 0 || roundIndex >= v.roundsPerQuota() {
		return 0, ErrInvalidRoundIndex
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if snap, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]; ok {
		return snap.pot, nil
	}
	return v.livePotLocked(quotaID), nil
}

// Draw describes the randomness state of a snapshotted round.
type Draw struct {
	RequestID uuid.UUID
	Completed bool
	Order     []string
}

// DrawOf returns the draw state of (quotaID, roundIndex). Order is nil
// until the oracle reports completion.
func (v *Vault) DrawOf(quotaID, roundIndex int) (Draw, error) {
	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return Draw{}, ErrInvalidQuota
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	snap, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]
	if !ok {
		return Draw{}, ErrNotSnapshotted
	}
	d := Draw{RequestID: snap.requestID}
	if !v.deps.Draws.Completed(snap.requestID) {
		return d, nil
	}
	d.Completed = true
	order, err := v.deps.Draws.Order(snap.requestID)
	if err != nil {
		return Draw{}, err
	}
	d.Order = order
	return d, nil
}

// Settlement is the outcome of a settled round.
type Settlement struct {
	Winner     string
	Amount     int64
	Proof      string
	RedeemedAt int64
}

// SettlementOf returns the settlement of (quotaID, roundIndex), false
// while the round is not settled.
func (v *Vault) SettlementOf(quotaID, roundIndex int) (Settlement, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.redemptions[windowKey{quota: quotaID, round: roundIndex}]
	if !ok {
		return Settlement{}, false
	}
	return Settlement{
		Winner:     rec.winner,
		Amount:     rec.amount,
		Proof:      rec.proof,
		RedeemedAt: rec.redeemedAt,
	}, true
}

// SnapshotInfo describes the frozen state of a snapshotted round.
type SnapshotInfo struct {
	Participants  []string
	Balances      map[string]int64
	Pot           int64
	SnapshottedAt int64
	Settled       bool
}

func (v *Vault) SnapshotOf(quotaID, roundIndex int) (SnapshotInfo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]
	if !ok {
		return SnapshotInfo{}, false
	}
	info := SnapshotInfo{
		Participants:  append([]string(nil), snap.participants...),
		Balances:      make(map[string]int64, len(snap.balances)),
		Pot:           snap.pot,
		SnapshottedAt: snap.snapshottedAt,
		Settled:       snap.settled,
	}
	for p, b := range snap.balances {
		info.Balances[p] = b
	}
	return info, true
}

// SnapshotBalance is the running payment-asset amount accounted as
// backing the outstanding claim supply. It never exceeds the vault's
// actual asset balance.
func (v *Vault) SnapshotBalance() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotBalance
}

// SnapshotClaimsSupply is the running outstanding claim-token amount.
// It never exceeds the claim ledger's total supply.
func (v *Vault) SnapshotClaimsSupply() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotClaimsSupply
}

// EnrolledCount is the number of addresses that ever enrolled.
func (v *Vault) EnrolledCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enrolledCount
}

// RoundsPerQuota is the number of rounds each quota window holds.
func (v *Vault) RoundsPerQuota() int {
	return v.roundsPerQuota()
}
