// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package dbconn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rodafin/roda/configuration"
)

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(configuration.DB{URL: "not-a-url"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse cfg.DB.URL")
}

func TestConnect_ValidURL(t *testing.T) {
	db, err := Connect(configuration.DB{
		URL:      "postgres://postgres@localhost/postgres?sslmode=disable",
		PoolSize: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, db)
	_ = db.Close()
}
