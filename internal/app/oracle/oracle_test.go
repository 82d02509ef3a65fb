// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package oracle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "vault-1"

type fakeClock struct {
	now int64
}

func (c *fakeClock) Now() time.Time { return time.Unix(c.now, 0) }

func candidates() []string {
	return []string{"alice", "bob", "carol", "dave"}
}

func TestSubmit(t *testing.T) {
	o := New(admin, &fakeClock{now: 100})
	id, err := o.Submit(admin, candidates())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, id)
	assert.False(t, o.Completed(id))

	req, ok := o.Get(id)
	require.True(t, ok)
	assert.Equal(t, candidates(), req.Candidates)
	assert.Equal(t, int64(100), req.RequestedAt)
}

func TestSubmit_Rejections(t *testing.T) {
	o := New(admin, nil)
	_, err := o.Submit("mallory", candidates())
	assert.Equal(t, ErrNotAdmin, err)
	_, err = o.Submit(admin, nil)
	assert.Equal(t, ErrNoCandidates, err)
}

func TestSubmit_CopiesCandidates(t *testing.T) {
	o := New(admin, nil)
	list := candidates()
	id, err := o.Submit(admin, list)
	require.NoError(t, err)
	list[0] = "mallory"

	req, _ := o.Get(id)
	assert.Equal(t, "alice", req.Candidates[0])
}

func TestFulfill_ExactlyOnce(t *testing.T) {
	o := New(admin, &fakeClock{now: 100})
	id, err := o.Submit(admin, candidates())
	require.NoError(t, err)

	require.NoError(t, o.Fulfill(id, []byte("seed")))
	assert.True(t, o.Completed(id))

	order, err := o.Order(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, candidates(), order)

	// a second fulfillment must not re-shuffle
	assert.Equal(t, ErrAlreadyFulfilled, o.Fulfill(id, []byte("other seed")))
	again, err := o.Order(id)
	require.NoError(t, err)
	assert.Equal(t, order, again)
}

func TestFulfill_Rejections(t *testing.T) {
	o := New(admin, nil)
	assert.Equal(t, ErrUnknownRequest, o.Fulfill(uuid.New(), []byte("seed")))

	id, err := o.Submit(admin, candidates())
	require.NoError(t, err)
	assert.Equal(t, ErrEmptySeed, o.Fulfill(id, nil))
}

func TestOrder_BeforeCompletion(t *testing.T) {
	o := New(admin, nil)
	id, err := o.Submit(admin, candidates())
	require.NoError(t, err)
	_, err = o.Order(id)
	assert.Equal(t, ErrNotCompleted, err)
}

func TestAbandon(t *testing.T) {
	o := New(admin, nil)
	id, err := o.Submit(admin, candidates())
	require.NoError(t, err)

	assert.Equal(t, ErrNotAdmin, o.Abandon("mallory", id))
	require.NoError(t, o.Abandon(admin, id))

	// late fulfillment of an abandoned request is rejected
	assert.Equal(t, ErrRequestAbandoned, o.Fulfill(id, []byte("seed")))
	assert.False(t, o.Completed(id))
}

func TestAbandon_CompletedRequestRejected(t *testing.T) {
	o := New(admin, nil)
	id, err := o.Submit(admin, candidates())
	require.NoError(t, err)
	require.NoError(t, o.Fulfill(id, []byte("seed")))
	assert.Equal(t, ErrAlreadyFulfilled, o.Abandon(admin, id))
}

func TestPending(t *testing.T) {
	clock := &fakeClock{now: 100}
	o := New(admin, clock)

	early, err := o.Submit(admin, candidates())
	require.NoError(t, err)
	clock.now = 200
	late, err := o.Submit(admin, candidates())
	require.NoError(t, err)

	pending := o.Pending(150)
	require.Len(t, pending, 1)
	assert.Equal(t, early, pending[0].ID)

	pending = o.Pending(300)
	assert.Len(t, pending, 2)

	require.NoError(t, o.Fulfill(late, []byte("seed")))
	require.NoError(t, o.Abandon(admin, early))
	assert.Empty(t, o.Pending(300))
}

func TestShuffle_DeterministicForSeed(t *testing.T) {
	a := Shuffle(candidates(), []byte("seed-1"))
	b := Shuffle(candidates(), []byte("seed-1"))
	assert.Equal(t, a, b)
	assert.ElementsMatch(t, candidates(), a)
}

func TestShuffle_DifferentSeedsDiffer(t *testing.T) {
	// with 24 permutations of 4 elements two of ten seeds colliding
	// everywhere is vanishingly unlikely
	base := Shuffle(candidates(), []byte("base"))
	differs := false
	for _, seed := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		if !equal(base, Shuffle(candidates(), []byte(seed))) {
			differs = true
			break
		}
	}
	assert.True(t, differs)
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	in := candidates()
	Shuffle(in, []byte("seed"))
	assert.Equal(t, candidates(), in)
}

func TestShuffle_SmallInputs(t *testing.T) {
	assert.Empty(t, Shuffle(nil, []byte("seed")))
	assert.Equal(t, []string{"alice"}, Shuffle([]string{"alice"}, []byte("seed")))
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
