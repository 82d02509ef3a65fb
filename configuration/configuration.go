// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package configuration

import (
	"time"

	"github.com/rodafin/roda/internal/pkg/cycle"
)

type Configuration struct {
	Log     Log
	DB      DB
	API     API
	Asset   Asset
	Sweeper Sweeper
	Oracle  Oracle
	Circles []Circle
}

type Log struct {
	Level  string
	Format string
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between failed store attempts
	AttemptInterval time.Duration
}

type API struct {
	// Query API listen address
	Addr string
	// Ops endpoints: healthcheck, metrics
	OpsListen string
	// Settled-round cache entries
	CacheSize int
}

type Asset struct {
	// Admin account of the shared payment-asset ledger
	Admin string
}

type Sweeper struct {
	// Cron spec for the window-close sweep
	Schedule string
}

type Oracle struct {
	// Cron spec for the fulfillment sweep
	Schedule string
	// Requests younger than this are left pending, imitating beacon latency
	FulfillDelay time.Duration
	// After this a pending draw may be re-requested
	RequestTimeout time.Duration
}

// Circle holds the immutable creation parameters of one circle, applied
// through the factory at boot.
type Circle struct {
	Name              string
	Creator           string
	TargetValue       int64
	TotalInstallments int
	NumUsers          int
	NumRounds         int
	ExitFeeBps        int64
	StartTime         int64
	Duration          time.Duration
	RoundDuration     time.Duration
	QuotaCapEarly     int
	QuotaCapMiddle    int
	QuotaCapLate      int
}

func Default() *Configuration {
	return &Configuration{
		Log: Log{
			Level:  "debug",
			Format: "text",
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        100,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		API: API{
			Addr:      ":8080",
			OpsListen: ":8888",
			CacheSize: 1024,
		},
		Asset: Asset{
			Admin: "treasury",
		},
		Sweeper: Sweeper{
			Schedule: "@every 30s",
		},
		Oracle: Oracle{
			Schedule:       "@every 15s",
			FulfillDelay:   time.Minute,
			RequestTimeout: 30 * time.Minute,
		},
	}
}
