// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault

import (
	"github.com/pkg/errors"

	"github.com/rodafin/roda/internal/models"
)

// Enroll admits participant into quotaID, collecting the first
// installment and minting the matching claim tokens. One position per
// address, for the lifetime of the circle: an address that exited can
// not come back.
func (v *Vault) Enroll(participant string, quotaID int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusActive {
		return ErrCircleNotActive
	}
	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return ErrInvalidQuota
	}
	if participant == "" {
		return ErrInvalidParameters
	}
	if v.enrolled[participant] {
		return ErrAlreadyEnrolled
	}
	if v.enrolledCount >= v.cfg.NumUsers {
		return ErrCircleFull
	}
	deadline, err := v.QuotaDeadline(quotaID)
	if err != nil {
		return err
	}
	if v.now() > deadline {
		return ErrJoinAfterDeadline
	}
	if v.quotaFilled[quotaID] >= v.cfg.QuotaCaps[quotaID] {
		return ErrQuotaFull
	}

	amount := v.cfg.InstallmentAmount
	// checked up front so no partial state survives a failed pull
	if v.deps.Asset.BalanceOf(participant) < amount {
		return ErrInsufficientBalance
	}

	if err := v.deps.Asset.Transfer(participant, v.Address(), amount); err != nil {
		return errors.Wrap(err, "failed to collect first installment")
	}
	if _, err := v.deps.Positions.Mint(v.Address(), participant, quotaID, v.cfg.TargetValue, v.cfg.TotalInstallments); err != nil {
		return errors.Wrap(err, "failed to mint position")
	}
	position, err := v.deps.Positions.RecordPayment(v.Address(), participant, amount)
	if err != nil {
		return errors.Wrap(err, "failed to record first installment")
	}
	if err := v.deps.Claims.Mint(v.Address(), participant, amount); err != nil {
		return errors.Wrap(err, "failed to mint claims")
	}

	v.enrolled[participant] = true
	v.active[participant] = true
	v.members = append(v.members, participant)
	v.enrolledCount++
	v.quotaFilled[quotaID]++
	v.snapshotBalance += amount
	v.snapshotClaimsSupply += amount

	if v.metrics != nil {
		v.metrics.Enrollments.Inc()
	}
	v.record(&ChangeSet{
		Circle:    v.circleRow(),
		Positions: []models.Position{v.positionRow(position)},
		Claims:    []models.ClaimAccount{v.claimRow(participant)},
	})
	return nil
}

// IsEnrolled reports whether addr ever enrolled, exited addresses
// included.
func (v *Vault) IsEnrolled(addr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enrolled[addr]
}

// HasActivePosition reports whether addr currently holds a live
// position.
func (v *Vault) HasActivePosition(addr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active[addr]
}

// QuotaFilled returns the filled seat count of quotaID.
func (v *Vault) QuotaFilled(quotaID int) (int, error) {
	if quotaID < QuotaEarly || quotaID > QuotaLate {
		return 0, ErrInvalidQuota
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quotaFilled[quotaID], nil
}
