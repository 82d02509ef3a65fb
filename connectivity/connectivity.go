// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package connectivity

import (
	"github.com/go-pg/pg"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/dbconn"
	"github.com/rodafin/roda/observability"
)

func Make(cfg *configuration.Configuration, obs *observability.Observability) *Connectivity {
	log := obs.Log()
	return &Connectivity{
		pg: func() *pg.DB {
			db, err := dbconn.Connect(cfg.DB)
			if err != nil {
				log.Fatal(err.Error())
			}
			return db
		}(),
	}
}

type Connectivity struct {
	pg *pg.DB
}

func (c *Connectivity) PG() *pg.DB {
	return c.pg
}
