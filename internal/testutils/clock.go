// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package testutils

import (
	"sync"
	"time"
)

// Clock is a manually advanced test clock.
type Clock struct {
	mu   sync.Mutex
	unix int64
}

func NewClock(unix int64) *Clock {
	return &Clock{unix: unix}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(c.unix, 0)
}

func (c *Clock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unix = unix
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unix += int64(d / time.Second)
}
