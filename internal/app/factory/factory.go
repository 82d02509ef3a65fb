// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package factory creates circles. It derives the deterministic circle
// id from the creation parameters, instantiates the claim ledger,
// position registry and draw oracle of the new circle with that id as
// their admin, and wires them into a vault. The payment-asset ledger is
// shared across all circles of the service.
package factory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/rodafin/roda/internal/app/ledger"
	"github.com/rodafin/roda/internal/app/oracle"
	"github.com/rodafin/roda/internal/app/registry"
	"github.com/rodafin/roda/internal/app/vault"
	"github.com/rodafin/roda/observability"
)

var (
	ErrCircleExists       = errors.New("circle with identical parameters already exists")
	ErrStartNotFuture     = errors.New("start time must be strictly in the future")
	ErrFeeTooHigh         = errors.New("exit fee above 500 bps")
	ErrUsersRoundsUnequal = errors.New("number of users must equal number of rounds")
	ErrCapsMismatch       = errors.New("quota caps must sum to the number of users")
	ErrInvalidParameters  = errors.New("invalid circle parameters")
)

// The factory's fee ceiling is tighter than the vault's own.
const maxExitFeeBps = 500

// CircleParams are the immutable creation parameters of one circle.
// Durations are unix seconds.
type CircleParams struct {
	Name              string
	Creator           string
	TargetValue       int64
	TotalInstallments int
	NumUsers          int
	NumRounds         int
	ExitFeeBps        int64
	StartTime         int64
	Duration          int64
	RoundDuration     int64
	QuotaCaps         [3]int
}

// Circle bundles a wired vault with the collaborators created for it.
type Circle struct {
	ID        string
	Params    CircleParams
	Vault     *vault.Vault
	Claims    *ledger.Ledger
	Positions *registry.Registry
	Draws     *oracle.Oracle
}

type Factory struct {
	mu      sync.RWMutex
	asset   *ledger.Ledger
	obs     *observability.Observability
	clock   vault.Clock
	rec     vault.Recorder
	circles map[string]*Circle
}

func New(asset *ledger.Ledger, obs *observability.Observability, clock vault.Clock, rec vault.Recorder) *Factory {
	if clock == nil {
		clock = vault.DefaultClock{}
	}
	return &Factory{
		asset:   asset,
		obs:     obs,
		clock:   clock,
		rec:     rec,
		circles: make(map[string]*Circle),
	}
}

// Asset is the shared payment-asset ledger.
func (f *Factory) Asset() *ledger.Ledger {
	return f.asset
}

// CircleID derives the circle address from the creation parameters.
// Identical parameters always produce the identical id, which is what
// makes duplicate creation detectable. The total duration stays
// outside the key: two creations differing only in duration collide
// and the second one is rejected as a duplicate.
func CircleID(p CircleParams) string {
	canonical := fmt.Sprintf("%s|%s|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d",
		p.Name, p.Creator, p.TargetValue, p.TotalInstallments,
		p.NumUsers, p.NumRounds, p.ExitFeeBps, p.StartTime,
		p.RoundDuration,
		p.QuotaCaps[0], p.QuotaCaps[1], p.QuotaCaps[2])
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// CreateCircle validates params, derives the circle id and wires a new
// vault with freshly created collaborators. A second call with the same
// parameters fails with ErrCircleExists.
func (f *Factory) CreateCircle(p CircleParams) (*Circle, error) {
	if err := f.validate(p); err != nil {
		return nil, err
	}
	id := CircleID(p)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.circles[id]; ok {
		return nil, ErrCircleExists
	}

	claims := ledger.New(id)
	positions := registry.New(id)
	draws := oracle.New(id, f.clock)

	v, err := vault.New(vault.CircleConfig{
		ID:                id,
		Name:              p.Name,
		Creator:           p.Creator,
		TargetValue:       p.TargetValue,
		TotalInstallments: p.TotalInstallments,
		NumUsers:          p.NumUsers,
		NumRounds:         p.NumRounds,
		ExitFeeBps:        p.ExitFeeBps,
		StartTime:         p.StartTime,
		Duration:          p.Duration,
		RoundDuration:     p.RoundDuration,
		QuotaCaps:         p.QuotaCaps,
	}, vault.Dependencies{
		Asset:     f.asset,
		Claims:    claims,
		Positions: positions,
		Draws:     draws,
	}, f.obs, f.clock, f.rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct vault")
	}

	c := &Circle{
		ID:        id,
		Params:    p,
		Vault:     v,
		Claims:    claims,
		Positions: positions,
		Draws:     draws,
	}
	f.circles[id] = c
	return c, nil
}

func (f *Factory) validate(p CircleParams) error {
	if p.Creator == "" || p.TargetValue <= 0 || p.TotalInstallments <= 0 {
		return ErrInvalidParameters
	}
	if p.NumUsers <= 0 || p.Duration <= 0 || p.RoundDuration <= 0 {
		return ErrInvalidParameters
	}
	if p.NumRounds%3 != 0 {
		return ErrInvalidParameters
	}
	if p.ExitFeeBps < 0 {
		return ErrInvalidParameters
	}
	if p.ExitFeeBps > maxExitFeeBps {
		return ErrFeeTooHigh
	}
	if p.NumUsers != p.NumRounds {
		return ErrUsersRoundsUnequal
	}
	if p.QuotaCaps[0] < 0 || p.QuotaCaps[1] < 0 || p.QuotaCaps[2] < 0 {
		return ErrInvalidParameters
	}
	if p.QuotaCaps[0]+p.QuotaCaps[1]+p.QuotaCaps[2] != p.NumUsers {
		return ErrCapsMismatch
	}
	if p.StartTime <= f.clock.Now().Unix() {
		return ErrStartNotFuture
	}
	return nil
}

// Lookup returns the circle for id.
func (f *Factory) Lookup(id string) (*Circle, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.circles[id]
	return c, ok
}

// Circles returns all created circles ordered by id.
func (f *Factory) Circles() []*Circle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Circle, 0, len(f.circles))
	for _, c := range f.circles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
