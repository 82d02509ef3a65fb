// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault

// The circle's total duration splits into three equal enrollment
// phases, one per quota. Integer division floors the phase length, so
// up to two trailing seconds belong to no full phase and fall into the
// late one.

func (v *Vault) phaseDuration() int64 {
	return v.cfg.Duration / quotaCount
}

func (v *Vault) phaseStart(quotaID int) int64 {
	return v.cfg.StartTime + int64(quotaID)*v.phaseDuration()
}

// PhaseAt resolves the enrollment phase a timestamp falls into.
// Timestamps before the start count as the early phase.
func (v *Vault) PhaseAt(ts int64) int {
	if ts < v.cfg.StartTime {
		return QuotaEarly
	}
	elapsed := ts - v.cfg.StartTime
	switch {
	case elapsed < v.phaseDuration():
		return QuotaEarly
	case elapsed < 2*v.phaseDuration():
		return QuotaMiddle
	default:
		return QuotaLate
	}
}

// QuotaDeadline is the last instant enrollment into quotaID is open.
// The late quota closes at the full configured duration, not at three
// floored phases.
func (v *Vault) QuotaDeadline(quotaID int) (int64, error) {
	switch quotaID {
	case QuotaEarly:
		return v.cfg.StartTime + v.phaseDuration(), nil
	case QuotaMiddle:
		return v.cfg.StartTime + 2*v.phaseDuration(), nil
	case QuotaLate:
		return v.cfg.StartTime + v.cfg.Duration, nil
	default:
		return 0, ErrInvalidQuota
	}
}

// roundsPerQuota follows the factory coupling numRounds == numUsers;
// the per-quota share is the floored third.
func (v *Vault) roundsPerQuota() int {
	return v.cfg.NumRounds / quotaCount
}

// roundDeadline is when round roundIndex of quotaID may close on time
// alone.
func (v *Vault) roundDeadline(quotaID, roundIndex int) int64 {
	return v.phaseStart(quotaID) + int64(roundIndex+1)*v.cfg.RoundDuration
}
