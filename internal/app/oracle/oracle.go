// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package oracle implements the draw oracle: it takes an ordered
// candidate list, hands back a request id synchronously, and at some
// later point is fulfilled exactly once with a verifiable random seed
// that fixes the draw order. Consumers poll Completed; nothing blocks
// on fulfillment.
package oracle

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotAdmin         = errors.New("caller is not the oracle admin")
	ErrNoCandidates     = errors.New("candidate list is empty")
	ErrUnknownRequest   = errors.New("unknown draw request")
	ErrAlreadyFulfilled = errors.New("draw request already fulfilled")
	ErrRequestAbandoned = errors.New("draw request was abandoned")
	ErrNotCompleted     = errors.New("draw request not completed")
	ErrEmptySeed        = errors.New("empty random seed")
)

type Clock interface {
	Now() time.Time
}

type defaultClock struct{}

func (defaultClock) Now() time.Time { return time.Now() }

// Request is the oracle-owned state of one draw.
type Request struct {
	ID          uuid.UUID
	Candidates  []string
	Completed   bool
	Order       []string
	Seed        []byte
	RequestedAt int64
	FulfilledAt int64
	Abandoned   bool
}

type Oracle struct {
	mu       sync.RWMutex
	admin    string
	clock    Clock
	requests map[uuid.UUID]*Request
}

func New(admin string, clock Clock) *Oracle {
	if clock == nil {
		clock = defaultClock{}
	}
	return &Oracle{
		admin:    admin,
		clock:    clock,
		requests: make(map[uuid.UUID]*Request),
	}
}

func (o *Oracle) TransferAdmin(caller, newAdmin string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.admin {
		return ErrNotAdmin
	}
	o.admin = newAdmin
	return nil
}

// Submit registers a draw for candidates and returns the request id.
// The result is produced asynchronously by Fulfill.
func (o *Oracle) Submit(caller string, candidates []string) (uuid.UUID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.admin {
		return uuid.UUID{}, ErrNotAdmin
	}
	if len(candidates) == 0 {
		return uuid.UUID{}, ErrNoCandidates
	}
	id := uuid.New()
	copied := make([]string, len(candidates))
	copy(copied, candidates)
	o.requests[id] = &Request{
		ID:          id,
		Candidates:  copied,
		RequestedAt: o.clock.Now().Unix(),
	}
	return id, nil
}

// Fulfill fixes the draw order of a pending request from seed. A
// request is fulfilled at most once; a second attempt and any attempt
// on an abandoned request are rejected without re-shuffling.
func (o *Oracle) Fulfill(id uuid.UUID, seed []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	req, ok := o.requests[id]
	if !ok {
		return ErrUnknownRequest
	}
	if req.Abandoned {
		return ErrRequestAbandoned
	}
	if req.Completed {
		return ErrAlreadyFulfilled
	}
	if len(seed) == 0 {
		return ErrEmptySeed
	}
	req.Seed = append([]byte(nil), seed...)
	req.Order = Shuffle(req.Candidates, seed)
	req.Completed = true
	req.FulfilledAt = o.clock.Now().Unix()
	return nil
}

// Abandon retires a pending request so a replacement can be issued.
// Fulfillment attempts arriving afterwards are rejected.
func (o *Oracle) Abandon(caller string, id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.admin {
		return ErrNotAdmin
	}
	req, ok := o.requests[id]
	if !ok {
		return ErrUnknownRequest
	}
	if req.Completed {
		return ErrAlreadyFulfilled
	}
	req.Abandoned = true
	return nil
}

func (o *Oracle) Completed(id uuid.UUID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	req, ok := o.requests[id]
	return ok && req.Completed
}

// Order returns the fulfilled draw order of id.
func (o *Oracle) Order(id uuid.UUID) ([]string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	req, ok := o.requests[id]
	if !ok {
		return nil, ErrUnknownRequest
	}
	if !req.Completed {
		return nil, ErrNotCompleted
	}
	out := make([]string, len(req.Order))
	copy(out, req.Order)
	return out, nil
}

// Get returns a copy of the request state.
func (o *Oracle) Get(id uuid.UUID) (Request, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	req, ok := o.requests[id]
	if !ok {
		return Request{}, false
	}
	return copyRequest(req), true
}

// Pending lists requests that are neither completed nor abandoned and
// were submitted at or before cutoff.
func (o *Oracle) Pending(cutoff int64) []Request {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []Request
	for _, req := range o.requests {
		if req.Completed || req.Abandoned {
			continue
		}
		if req.RequestedAt > cutoff {
			continue
		}
		out = append(out, copyRequest(req))
	}
	return out
}

func copyRequest(req *Request) Request {
	out := *req
	out.Candidates = append([]string(nil), req.Candidates...)
	out.Order = append([]string(nil), req.Order...)
	out.Seed = append([]byte(nil), req.Seed...)
	return out
}
