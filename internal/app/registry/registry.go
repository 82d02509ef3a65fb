// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package registry implements the position registry of one circle: a
// single non-fungible record per enrolled participant holding quota
// assignment, payment progress and lifecycle status.
package registry

import (
	"sync"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusExited Status = "EXITED"
	StatusClosed Status = "CLOSED"
)

var (
	ErrNotAdmin      = errors.New("caller is not the registry admin")
	ErrAlreadyMinted = errors.New("position already minted for owner")
	ErrNotFound      = errors.New("position not found")
)

// Position is one participant's record. QuotaID is immutable once
// minted.
type Position struct {
	Owner             string
	QuotaID           int
	TargetValue       int64
	TotalInstallments int
	InstallmentsPaid  int
	TotalPaid         int64
	Status            Status
}

type Registry struct {
	mu        sync.RWMutex
	admin     string
	positions map[string]*Position
}

func New(admin string) *Registry {
	return &Registry{
		admin:     admin,
		positions: make(map[string]*Position),
	}
}

func (r *Registry) TransferAdmin(caller, newAdmin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.admin {
		return ErrNotAdmin
	}
	r.admin = newAdmin
	return nil
}

// Mint creates the position of owner. At most one position per owner
// can ever exist in a registry.
func (r *Registry) Mint(caller, owner string, quotaID int, target int64, installments int) (Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.admin {
		return Position{}, ErrNotAdmin
	}
	if _, ok := r.positions[owner]; ok {
		return Position{}, ErrAlreadyMinted
	}
	p := &Position{
		Owner:             owner,
		QuotaID:           quotaID,
		TargetValue:       target,
		TotalInstallments: installments,
		Status:            StatusActive,
	}
	r.positions[owner] = p
	return *p, nil
}

// RecordPayment bumps the paid counters of an existing position.
func (r *Registry) RecordPayment(caller, owner string, amount int64) (Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.admin {
		return Position{}, ErrNotAdmin
	}
	p, ok := r.positions[owner]
	if !ok {
		return Position{}, ErrNotFound
	}
	p.InstallmentsPaid++
	p.TotalPaid += amount
	return *p, nil
}

func (r *Registry) SetStatus(caller, owner string, status Status) (Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.admin {
		return Position{}, ErrNotAdmin
	}
	p, ok := r.positions[owner]
	if !ok {
		return Position{}, ErrNotFound
	}
	p.Status = status
	return *p, nil
}

// Get returns a copy of owner's position.
func (r *Registry) Get(owner string) (Position, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.positions[owner]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// All returns copies of every position, in no particular order.
func (r *Registry) All() []Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Position, 0, len(r.positions))
	for _, p := range r.positions {
		out = append(out, *p)
	}
	return out
}
