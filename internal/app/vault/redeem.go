// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault

import (
	"github.com/pkg/errors"

	"github.com/rodafin/roda/internal/app/registry"
	"github.com/rodafin/roda/internal/models"
)

// Redeem pays the full round pot to the first address of the fulfilled
// draw order. Exactly once per round: the round settles, the winner
// joins the quota's exclusion set, the winner's own snapshotted claims
// burn, everyone else's claims roll into the following rounds. Until
// the oracle reports completion the call fails and can simply be
// retried. The returned proof is the auditable settlement digest.
func (v *Vault) Redeem(caller string, quotaID, roundIndex int) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return "", ErrInvalidQuota
	}
	if roundIndex < 0 || roundIndex >= v.roundsPerQuota() {
		return "", ErrInvalidRoundIndex
	}
	snap, ok := v.snapshots[windowKey{quota: quotaID, round: roundIndex}]
	if !ok {
		return "", ErrNotSnapshotted
	}
	if snap.settled {
		return "", ErrAlreadySettled
	}
	if !v.deps.Draws.Completed(snap.requestID) {
		return "", ErrDrawNotComplete
	}
	order, err := v.deps.Draws.Order(snap.requestID)
	if err != nil {
		return "", errors.Wrap(err, "failed to read draw order")
	}
	if len(order) == 0 {
		return "", ErrInvalidParameters
	}
	if caller != order[0] {
		return "", ErrNotSelected
	}
	// membership in the snapshot already proves the winner held a live
	// position when the round closed; a position closed by full payment
	// since then stays redeemable
	if !v.enrolled[caller] {
		return "", ErrNotEnrolled
	}
	pot := snap.pot
	if pot <= 0 {
		return "", ErrZeroAmount
	}
	if v.deps.Asset.BalanceOf(v.Address()) < pot {
		return "", ErrInsufficientBalance
	}
	if v.snapshotBalance < pot {
		return "", ErrInsufficientBalance
	}

	winnerClaims := snap.balances[caller]
	if winnerClaims > 0 {
		if err := v.deps.Claims.Burn(v.Address(), caller, winnerClaims); err != nil {
			return "", errors.Wrap(err, "failed to burn winner claims")
		}
	}
	position, err := v.deps.Positions.SetStatus(v.Address(), caller, registry.StatusClosed)
	if err != nil {
		return "", errors.Wrap(err, "failed to close winner position")
	}
	if err := v.deps.Claims.SetFrozen(v.Address(), false); err != nil {
		return "", errors.Wrap(err, "failed to unfreeze claim transfers")
	}
	if err := v.deps.Asset.Transfer(v.Address(), caller, pot); err != nil {
		return "", errors.Wrap(err, "failed to pay out pot")
	}

	now := v.now()
	snap.settled = true
	delete(v.active, caller)
	v.excluded[quotaID][caller] = true
	v.snapshotBalance -= pot
	v.snapshotClaimsSupply -= winnerClaims

	proof := models.RedemptionProof(quotaID, roundIndex, caller, pot, now)
	v.redemptions[windowKey{quota: quotaID, round: roundIndex}] = &redemptionRecord{
		winner:     caller,
		amount:     pot,
		proof:      proof,
		redeemedAt: now,
	}

	if v.metrics != nil {
		v.metrics.Redemptions.Inc()
	}
	v.record(&ChangeSet{
		Circle:    v.circleRow(),
		Positions: []models.Position{v.positionRow(position)},
		Snapshot:  v.snapshotRow(quotaID, roundIndex, snap),
		Redemption: &models.Redemption{
			CircleID:   v.cfg.ID,
			QuotaID:    quotaID,
			RoundIndex: roundIndex,
			Winner:     caller,
			Amount:     pot,
			Proof:      proof,
			RedeemedAt: now,
		},
		Claims: []models.ClaimAccount{v.claimRow(caller)},
	})
	return proof, nil
}
