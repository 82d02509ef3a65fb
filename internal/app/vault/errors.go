// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package vault

import "github.com/pkg/errors"

// Validation errors: bad input, checked before anything else.
var (
	ErrInvalidQuota      = errors.New("invalid quota id")
	ErrInvalidRoundIndex = errors.New("invalid round index")
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrZeroAmount        = errors.New("zero amount")
)

// Precondition errors: the operation is a no-op when raised.
var (
	ErrAlreadyEnrolled      = errors.New("address already enrolled")
	ErrNotEnrolled          = errors.New("address not enrolled")
	ErrCircleFull           = errors.New("circle is full")
	ErrQuotaFull            = errors.New("quota is full")
	ErrJoinAfterDeadline    = errors.New("quota enrollment deadline passed")
	ErrPositionFullyPaid    = errors.New("position fully paid")
	ErrPositionNotActive    = errors.New("position not active")
	ErrWindowNotReady       = errors.New("window not ready to close")
	ErrAlreadySnapshotted   = errors.New("window already snapshotted")
	ErrNotSnapshotted       = errors.New("window not snapshotted")
	ErrAlreadySettled       = errors.New("round already settled")
	ErrNotSelected          = errors.New("caller was not selected")
	ErrNoActiveParticipants = errors.New("no active participants")
	ErrDrawNotComplete      = errors.New("draw not complete")
	ErrDrawAlreadyComplete  = errors.New("draw already complete")
	ErrRetryTooEarly        = errors.New("draw request not timed out yet")
	ErrSnapshotPending      = errors.New("address captured in an unsettled snapshot")
	ErrUnknownDrawRequest   = errors.New("unknown draw request")
)

// Resource-insufficiency errors: running or actual balances would be
// overdrawn.
var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInsufficientClaims   = errors.New("insufficient claims")
	ErrInsufficientSnapshot = errors.New("insufficient snapshot balance")
)

// Lifecycle errors.
var (
	ErrCircleNotActive = errors.New("circle not active")
	ErrUnauthorized    = errors.New("caller not authorized")
)
