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

// PayInstallment collects one installment from participant and mints
// the matching claims. The position closes once the last installment
// lands; its claims stay redeemable.
func (v *Vault) PayInstallment(participant string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusActive {
		return ErrCircleNotActive
	}
	if !v.enrolled[participant] {
		return ErrNotEnrolled
	}
	position, ok := v.deps.Positions.Get(participant)
	if !ok {
		return ErrNotEnrolled
	}
	if position.InstallmentsPaid >= position.TotalInstallments {
		return ErrPositionFullyPaid
	}
	if position.Status != registry.StatusActive {
		return ErrPositionNotActive
	}

	amount := v.cfg.InstallmentAmount
	if v.deps.Asset.BalanceOf(participant) < amount {
		return ErrInsufficientBalance
	}

	if err := v.deps.Asset.Transfer(participant, v.Address(), amount); err != nil {
		return errors.Wrap(err, "failed to collect installment")
	}
	position, err := v.deps.Positions.RecordPayment(v.Address(), participant, amount)
	if err != nil {
		return errors.Wrap(err, "failed to record installment")
	}
	if err := v.deps.Claims.Mint(v.Address(), participant, amount); err != nil {
		return errors.Wrap(err, "failed to mint claims")
	}

	if position.InstallmentsPaid >= position.TotalInstallments {
		position, err = v.deps.Positions.SetStatus(v.Address(), participant, registry.StatusClosed)
		if err != nil {
			return errors.Wrap(err, "failed to close fully paid position")
		}
		delete(v.active, participant)
	}

	v.snapshotBalance += amount
	v.snapshotClaimsSupply += amount

	if v.metrics != nil {
		v.metrics.Installments.Inc()
	}
	v.record(&ChangeSet{
		Circle:    v.circleRow(),
		Positions: []models.Position{v.positionRow(position)},
		Claims:    []models.ClaimAccount{v.claimRow(participant)},
	})
	return nil
}
