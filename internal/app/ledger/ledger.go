// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package ledger implements a fungible balance ledger. One instance
// backs the claim tokens of a single circle, another the payment asset
// shared by all circles of the service. Supply is conserved: the sum of
// all balances always equals TotalSupply.
package ledger

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrNotAdmin            = errors.New("caller is not the ledger admin")
	ErrFrozen              = errors.New("transfers are frozen")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrEmptyAddress        = errors.New("empty address")
)

type Ledger struct {
	mu       sync.RWMutex
	admin    string
	frozen   bool
	balances map[string]int64
	supply   int64
}

// New creates an empty ledger administered by admin. Admin rights cover
// mint, burn and the transfer-freeze flag; they are handed to the vault
// by the factory right after creation.
func New(admin string) *Ledger {
	return &Ledger{
		admin:    admin,
		balances: make(map[string]int64),
	}
}

func (l *Ledger) TransferAdmin(caller, newAdmin string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.admin {
		return ErrNotAdmin
	}
	if newAdmin == "" {
		return ErrEmptyAddress
	}
	l.admin = newAdmin
	return nil
}

func (l *Ledger) Mint(caller, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.admin {
		return ErrNotAdmin
	}
	if to == "" {
		return ErrEmptyAddress
	}
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	l.balances[to] += amount
	l.supply += amount
	return nil
}

// Burn destroys amount from the balance of from. It is an admin
// operation and stays available while transfers are frozen: the vault
// burns the winner's snapshotted claims during redemption, which
// happens inside the frozen span.
func (l *Ledger) Burn(caller, from string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.admin {
		return ErrNotAdmin
	}
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	l.supply -= amount
	return nil
}

func (l *Ledger) Transfer(from, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frozen {
		return ErrFrozen
	}
	if from == "" || to == "" {
		return ErrEmptyAddress
	}
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	l.balances[to] += amount
	return nil
}

func (l *Ledger) SetFrozen(caller string, frozen bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.admin {
		return ErrNotAdmin
	}
	l.frozen = frozen
	return nil
}

func (l *Ledger) Frozen() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frozen
}

func (l *Ledger) BalanceOf(addr string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[addr]
}

func (l *Ledger) TotalSupply() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Accounts returns a copy of all nonzero balances.
func (l *Ledger) Accounts() map[string]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int64, len(l.balances))
	for addr, balance := range l.balances {
		out[addr] = balance
	}
	return out
}
