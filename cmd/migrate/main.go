// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package main

import (
	"github.com/go-pg/migrations"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/dbconn"
)

var (
	configPath   = pflag.String("config", "roda.yaml", "path to the configuration file")
	migrationDir = pflag.String("dir", "scripts/migrations", "directory with migrations")
	doInit       = pflag.Bool("init", false, "perform db init (for empty db)")
)

func main() {
	pflag.Parse()
	log := logrus.New()

	cfg, err := configuration.Load(*configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	db, err := dbconn.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err.Error())
	}

	migrationCollection := migrations.NewCollection()
	if *doInit {
		_, _, err := migrationCollection.Run(db, "init")
		if err != nil {
			log.Fatal(errors.Wrap(err, "could not init migrations"))
		}
	}

	err = migrationCollection.DiscoverSQLMigrations(*migrationDir)
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to read migrations"))
	}

	_, _, err = migrationCollection.Run(db, "up")
	if err != nil {
		log.Fatal(errors.Wrap(err, "could not migrate"))
	}
	log.Info("migrated successfully!")
}
