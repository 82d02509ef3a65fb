// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package vault implements the circle vault: enrollment into the three
// time-based quotas, installment collection, early exit, the
// window/round snapshot lifecycle and pot redemption against the draw
// oracle. Every entry point runs to completion under one mutex, so a
// transfer side effect can never re-enter the vault mid-operation.
package vault

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rodafin/roda/internal/app/registry"
	"github.com/rodafin/roda/internal/models"
	"github.com/rodafin/roda/observability"
)

type CircleStatus string

const (
	StatusActive  CircleStatus = "ACTIVE"
	StatusFrozen  CircleStatus = "FROZEN"
	StatusSettled CircleStatus = "SETTLED"
	StatusClosed  CircleStatus = "CLOSED"
)

const (
	QuotaEarly  = 0
	QuotaMiddle = 1
	QuotaLate   = 2

	quotaCount = 3

	// The factory caps the fee tighter (500 bps); this is the vault's
	// own ceiling.
	maxExitFeeBps = 1000

	feeDenominator = 10000
)

type Clock interface {
	Now() time.Time
}

type DefaultClock struct{}

func (DefaultClock) Now() time.Time { return time.Now() }

// CircleConfig is immutable after creation.
type CircleConfig struct {
	ID                string
	Name              string
	Creator           string
	TargetValue       int64
	TotalInstallments int
	// TargetValue / TotalInstallments, floored. The division remainder
	// is never collected nor paid out: it is permanently unrecoverable.
	InstallmentAmount int64
	NumUsers          int
	NumRounds         int
	ExitFeeBps        int64
	StartTime         int64
	Duration          int64
	RoundDuration     int64
	QuotaCaps         [quotaCount]int
}

// PaymentAsset is the external asset ledger installments are paid in.
type PaymentAsset interface {
	Transfer(from, to string, amount int64) error
	BalanceOf(addr string) int64
}

// ClaimLedger is the circle's fungible claim-token ledger. The vault is
// its admin; the freeze flag only pauses this circle because every
// circle gets a ledger instance of its own.
type ClaimLedger interface {
	Mint(caller, to string, amount int64) error
	Burn(caller, from string, amount int64) error
	BalanceOf(addr string) int64
	TotalSupply() int64
	SetFrozen(caller string, frozen bool) error
}

// PositionRegistry holds one record per enrolled participant.
type PositionRegistry interface {
	Mint(caller, owner string, quotaID int, target int64, installments int) (registry.Position, error)
	RecordPayment(caller, owner string, amount int64) (registry.Position, error)
	SetStatus(caller, owner string, status registry.Status) (registry.Position, error)
	Get(owner string) (registry.Position, bool)
}

// DrawOracle produces the verifiable draw order. Submit returns a
// request id synchronously; the order appears asynchronously and is
// polled via Completed.
type DrawOracle interface {
	Submit(caller string, candidates []string) (uuid.UUID, error)
	Abandon(caller string, id uuid.UUID) error
	Completed(id uuid.UUID) bool
	Order(id uuid.UUID) ([]string, error)
}

type Dependencies struct {
	Asset     PaymentAsset
	Claims    ClaimLedger
	Positions PositionRegistry
	Draws     DrawOracle
}

// ChangeSet carries the durable rows one vault operation produced. The
// recorder persists them; a single operation's rows land in a single
// transaction.
type ChangeSet struct {
	Circle       *models.Circle
	Positions    []models.Position
	Snapshot     *models.Snapshot
	Entries      []models.SnapshotEntry
	DrawRequests []models.DrawRequest
	Redemption   *models.Redemption
	Claims       []models.ClaimAccount
}

type Recorder interface {
	Record(cs *ChangeSet)
}

type windowKey struct {
	quota int
	round int
}

// windowSnapshot is immutable once taken except for the settled flag
// and draw-request replacement on retry.
type windowSnapshot struct {
	participants  []string
	balances      map[string]int64
	pot           int64
	snapshottedAt int64
	requestID     uuid.UUID
	requestedAt   int64
	settled       bool
}

type redemptionRecord struct {
	winner     string
	amount     int64
	proof      string
	redeemedAt int64
}

type Vault struct {
	mu    sync.Mutex
	cfg   CircleConfig
	deps  Dependencies
	clock Clock
	rec   Recorder

	metrics *observability.VaultMetrics

	status CircleStatus

	// members keeps enrollment order so snapshot candidate lists are
	// deterministic.
	members []string
	// enrolled is the lifetime set: an address that ever enrolled can
	// never enroll again, exit included.
	enrolled map[string]bool
	// active marks addresses holding a live position.
	active map[string]bool

	quotaFilled   [quotaCount]int
	enrolledCount int

	snapshotBalance      int64
	snapshotClaimsSupply int64

	snapshots   map[windowKey]*windowSnapshot
	redemptions map[windowKey]*redemptionRecord
	// excluded holds past winners per quota, permanently out of that
	// quota's future snapshots.
	excluded [quotaCount]map[string]bool
}

func New(cfg CircleConfig, deps Dependencies, obs *observability.Observability, clock Clock, rec Recorder) (*Vault, error) {
	if cfg.TotalInstallments <= 0 {
		return nil, ErrInvalidParameters
	}
	if cfg.ExitFeeBps < 0 || cfg.ExitFeeBps > maxExitFeeBps {
		return nil, ErrInvalidParameters
	}
	if cfg.TargetValue <= 0 || cfg.RoundDuration <= 0 || cfg.Duration <= 0 {
		return nil, ErrInvalidParameters
	}
	if cfg.InstallmentAmount == 0 {
		cfg.InstallmentAmount = cfg.TargetValue / int64(cfg.TotalInstallments)
	}
	if clock == nil {
		clock = DefaultClock{}
	}
	v := &Vault{
		cfg:         cfg,
		deps:        deps,
		clock:       clock,
		rec:         rec,
		status:      StatusActive,
		enrolled:    make(map[string]bool),
		active:      make(map[string]bool),
		snapshots:   make(map[windowKey]*windowSnapshot),
		redemptions: make(map[windowKey]*redemptionRecord),
	}
	for q := 0; q < quotaCount; q++ {
		v.excluded[q] = make(map[string]bool)
	}
	if obs != nil {
		v.metrics = observability.MakeVaultMetrics(obs)
	}
	return v, nil
}

// Address is the vault's own account on the payment-asset ledger and
// the caller identity for its administrative collaborator rights.
func (v *Vault) Address() string {
	return v.cfg.ID
}

func (v *Vault) Config() CircleConfig {
	return v.cfg
}

func (v *Vault) Status() CircleStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// SetStatus is the administrative lifecycle switch. Only the creator
// may flip it; which transitions are meaningful is a product decision
// kept outside the vault.
func (v *Vault) SetStatus(caller string, status CircleStatus) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if caller != v.cfg.Creator {
		return ErrUnauthorized
	}
	switch status {
	case StatusActive, StatusFrozen, StatusSettled, StatusClosed:
	default:
		return ErrInvalidParameters
	}
	v.status = status
	v.record(&ChangeSet{Circle: v.circleRow()})
	return nil
}

func (v *Vault) record(cs *ChangeSet) {
	if v.rec != nil {
		v.rec.Record(cs)
	}
}

// circleRow builds the durable row for the current running state.
// Callers must hold v.mu.
func (v *Vault) circleRow() *models.Circle {
	return &models.Circle{
		CircleID:             v.cfg.ID,
		Name:                 v.cfg.Name,
		Creator:              v.cfg.Creator,
		TargetValue:          v.cfg.TargetValue,
		TotalInstallments:    v.cfg.TotalInstallments,
		InstallmentAmount:    v.cfg.InstallmentAmount,
		NumUsers:             v.cfg.NumUsers,
		NumRounds:            v.cfg.NumRounds,
		ExitFeeBps:           v.cfg.ExitFeeBps,
		StartTime:            v.cfg.StartTime,
		Duration:             v.cfg.Duration,
		RoundDuration:        v.cfg.RoundDuration,
		QuotaCapEarly:        v.cfg.QuotaCaps[QuotaEarly],
		QuotaCapMiddle:       v.cfg.QuotaCaps[QuotaMiddle],
		QuotaCapLate:         v.cfg.QuotaCaps[QuotaLate],
		Status:               string(v.status),
		EnrolledCount:        v.enrolledCount,
		QuotaFilledEarly:     v.quotaFilled[QuotaEarly],
		QuotaFilledMiddle:    v.quotaFilled[QuotaMiddle],
		QuotaFilledLate:      v.quotaFilled[QuotaLate],
		SnapshotBalance:      v.snapshotBalance,
		SnapshotClaimsSupply: v.snapshotClaimsSupply,
	}
}

func (v *Vault) positionRow(p registry.Position) models.Position {
	return models.Position{
		CircleID:          v.cfg.ID,
		Owner:             p.Owner,
		QuotaID:           p.QuotaID,
		TargetValue:       p.TargetValue,
		TotalInstallments: p.TotalInstallments,
		InstallmentsPaid:  p.InstallmentsPaid,
		TotalPaid:         p.TotalPaid,
		Status:            string(p.Status),
	}
}

func (v *Vault) claimRow(owner string) models.ClaimAccount {
	return models.ClaimAccount{
		CircleID: v.cfg.ID,
		Owner:    owner,
		Balance:  v.deps.Claims.BalanceOf(owner),
	}
}

func (v *Vault) now() int64 {
	return v.clock.Now().Unix()
}
