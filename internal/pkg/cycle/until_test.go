// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package cycle

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilError_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := UntilError(func() error {
		calls++
		return nil
	}, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUntilError_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := UntilError(func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntilError_ExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := errors.New("broken")
	err := UntilError(func() error {
		calls++
		return failure
	}, 0, 3)
	require.Error(t, err)
	assert.Equal(t, failure, err)
	assert.Equal(t, 3, calls)
}

func TestUntilError_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	_ = UntilError(func() error {
		calls++
		return errors.New("broken")
	}, 0, 0)
	assert.Equal(t, 1, calls)
}
