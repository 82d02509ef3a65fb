// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package testutils

import (
	"sync"

	"github.com/rodafin/roda/internal/app/vault"
)

// MemoryRecorder collects the change sets a vault emits so tests can
// assert on the durable rows of each operation.
type MemoryRecorder struct {
	mu   sync.Mutex
	sets []*vault.ChangeSet
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(cs *vault.ChangeSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, cs)
}

func (r *MemoryRecorder) Sets() []*vault.ChangeSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*vault.ChangeSet, len(r.sets))
	copy(out, r.sets)
	return out
}

func (r *MemoryRecorder) Last() *vault.ChangeSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sets) == 0 {
		return nil
	}
	return r.sets[len(r.sets)-1]
}

func (r *MemoryRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}
