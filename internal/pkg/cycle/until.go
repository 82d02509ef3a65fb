// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package cycle

import (
	"math"
	"time"
)

type Limit int

const (
	INFINITY Limit = math.MaxInt32
)

// UntilError calls f until it succeeds or attempts run out. The last
// error is returned so the caller decides whether exhaustion is fatal.
func UntilError(f func() error, interval time.Duration, attempts Limit) error {
	if attempts < 1 {
		attempts = 1
	}
	counter := Limit(1)
	for {
		err := f()
		if err == nil {
			return nil
		}
		if counter >= attempts {
			return err
		}
		counter++
		time.Sleep(interval)
	}
}
