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

// ExitEarly burns claimAmount of participant's claims and pays out the
// amount minus the exit fee. The fee is not transferred anywhere: it
// stays in the vault's asset balance and dilutes the pot in the
// remaining participants' favor. The position is marked EXITED and the
// address stays on the lifetime enrollment list, so re-enrollment is
// permanently rejected. An address captured in an unsettled snapshot
// can not exit until that round settles: the payout would drain the
// pot the pending draw is about to award.
func (v *Vault) ExitEarly(participant string, claimAmount int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusActive {
		return ErrCircleNotActive
	}
	if !v.enrolled[participant] || !v.active[participant] {
		return ErrNotEnrolled
	}
	position, ok := v.deps.Positions.Get(participant)
	if !ok {
		return ErrNotEnrolled
	}
	if position.Status != registry.StatusActive {
		return ErrPositionNotActive
	}
	for _, snap := range v.snapshots {
		if snap.settled {
			continue
		}
		if _, pending := snap.balances[participant]; pending {
			return ErrSnapshotPending
		}
	}
	if claimAmount <= 0 {
		return ErrZeroAmount
	}
	if v.deps.Claims.BalanceOf(participant) < claimAmount {
		return ErrInsufficientClaims
	}

	fee := claimAmount * v.cfg.ExitFeeBps / feeDenominator
	net := claimAmount - fee

	if v.deps.Asset.BalanceOf(v.Address()) < net {
		return ErrInsufficientBalance
	}
	if v.snapshotBalance < net {
		return ErrInsufficientSnapshot
	}
	if v.snapshotClaimsSupply < claimAmount {
		return ErrInsufficientSnapshot
	}

	if err := v.deps.Claims.Burn(v.Address(), participant, claimAmount); err != nil {
		return errors.Wrap(err, "failed to burn claims")
	}
	position, err := v.deps.Positions.SetStatus(v.Address(), participant, registry.StatusExited)
	if err != nil {
		return errors.Wrap(err, "failed to mark position exited")
	}
	if err := v.deps.Asset.Transfer(v.Address(), participant, net); err != nil {
		return errors.Wrap(err, "failed to pay out exit")
	}

	v.snapshotBalance -= net
	v.snapshotClaimsSupply -= claimAmount
	delete(v.active, participant)

	if v.metrics != nil {
		v.metrics.Exits.Inc()
	}
	v.record(&ChangeSet{
		Circle:    v.circleRow(),
		Positions: []models.Position{v.positionRow(position)},
		Claims:    []models.ClaimAccount{v.claimRow(participant)},
	})
	return nil
}
