// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Circle carries the immutable creation parameters of one circle plus
// the running counters the vault mutates on every operation.
type Circle struct {
	tableName struct{} `sql:"circles"` //nolint: unused,structcheck

	CircleID          string `sql:"circle_id,pk"`
	Name              string `sql:"name"`
	Creator           string `sql:"creator"`
	TargetValue       int64  `sql:"target_value"`
	TotalInstallments int    `sql:"total_installments"`
	InstallmentAmount int64  `sql:"installment_amount"`
	NumUsers          int    `sql:"num_users"`
	NumRounds         int    `sql:"num_rounds"`
	ExitFeeBps        int64  `sql:"exit_fee_bps"`
	StartTime         int64  `sql:"start_time"`
	Duration          int64  `sql:"duration"`
	RoundDuration     int64  `sql:"round_duration"`
	QuotaCapEarly     int    `sql:"quota_cap_early"`
	QuotaCapMiddle    int    `sql:"quota_cap_middle"`
	QuotaCapLate      int    `sql:"quota_cap_late"`

	Status               string `sql:"status"`
	EnrolledCount        int    `sql:"enrolled_count"`
	QuotaFilledEarly     int    `sql:"quota_filled_early"`
	QuotaFilledMiddle    int    `sql:"quota_filled_middle"`
	QuotaFilledLate      int    `sql:"quota_filled_late"`
	SnapshotBalance      int64  `sql:"snapshot_balance"`
	SnapshotClaimsSupply int64  `sql:"snapshot_claims_supply"`
}

type Position struct {
	tableName struct{} `sql:"positions"` //nolint: unused,structcheck

	CircleID          string `sql:"circle_id,pk"`
	Owner             string `sql:"owner,pk"`
	QuotaID           int    `sql:"quota_id"`
	TargetValue       int64  `sql:"target_value"`
	TotalInstallments int    `sql:"total_installments"`
	InstallmentsPaid  int    `sql:"installments_paid"`
	TotalPaid         int64  `sql:"total_paid"`
	Status            string `sql:"status"`
}

type Snapshot struct {
	tableName struct{} `sql:"snapshots"` //nolint: unused,structcheck

	CircleID      string `sql:"circle_id,pk"`
	QuotaID       int    `sql:"quota_id,pk"`
	RoundIndex    int    `sql:"round_index,pk"`
	Pot           int64  `sql:"pot"`
	SnapshottedAt int64  `sql:"snapshotted_at"`
	DrawRequestID string `sql:"draw_request_id"`
	Settled       bool   `sql:"settled"`
}

// SnapshotEntry is one captured participant balance of a snapshot.
// Idx preserves the candidate order handed to the draw oracle.
type SnapshotEntry struct {
	tableName struct{} `sql:"snapshot_entries"` //nolint: unused,structcheck

	CircleID    string `sql:"circle_id,pk"`
	QuotaID     int    `sql:"quota_id,pk"`
	RoundIndex  int    `sql:"round_index,pk"`
	Participant string `sql:"participant,pk"`
	Idx         int    `sql:"idx"`
	Balance     int64  `sql:"balance"`
}

type DrawRequest struct {
	tableName struct{} `sql:"draw_requests"` //nolint: unused,structcheck

	RequestID   string `sql:"request_id,pk"`
	CircleID    string `sql:"circle_id"`
	QuotaID     int    `sql:"quota_id"`
	RoundIndex  int    `sql:"round_index"`
	Candidates  string `sql:"candidates"`
	Completed   bool   `sql:"completed"`
	DrawOrder   string `sql:"draw_order"`
	Seed        []byte `sql:"seed"`
	RequestedAt int64  `sql:"requested_at"`
	FulfilledAt int64  `sql:"fulfilled_at"`
	Abandoned   bool   `sql:"abandoned"`
}

// Redemption records a settled round. The set of redemptions of one
// (circle, quota) is that quota's redemption-exclusion set.
type Redemption struct {
	tableName struct{} `sql:"redemptions"` //nolint: unused,structcheck

	CircleID   string `sql:"circle_id,pk"`
	QuotaID    int    `sql:"quota_id,pk"`
	RoundIndex int    `sql:"round_index,pk"`
	Winner     string `sql:"winner"`
	Amount     int64  `sql:"amount"`
	Proof      string `sql:"proof"`
	RedeemedAt int64  `sql:"redeemed_at"`
}

type ClaimAccount struct {
	tableName struct{} `sql:"claim_accounts"` //nolint: unused,structcheck

	CircleID string `sql:"circle_id,pk"`
	Owner    string `sql:"owner,pk"`
	Balance  int64  `sql:"balance"`
}

// JoinAddresses packs an ordered address list into one text column.
func JoinAddresses(addrs []string) string {
	return strings.Join(addrs, ",")
}

func SplitAddresses(packed string) []string {
	if packed == "" {
		return nil
	}
	return strings.Split(packed, ",")
}

// RedemptionProof derives the auditable proof value of a settled round.
func RedemptionProof(quotaID, roundIndex int, winner string, amount, redeemedAt int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s|%d|%d", quotaID, roundIndex, winner, amount, redeemedAt)))
	return hex.EncodeToString(sum[:])
}
