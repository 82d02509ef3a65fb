// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package testutils

import (
	"fmt"
	"log"

	"github.com/go-pg/migrations"
	"github.com/go-pg/pg"
	"github.com/ory/dockertest/v3"
)

var pgOptions = &pg.Options{
	Addr:            "localhost",
	Database:        "roda_test_db",
	User:            "postgres",
	Password:        "secret",
	ApplicationName: "roda",
}

// SetupDB starts a disposable postgres container, runs the migrations
// from migrationsDir and returns a connected client plus a cleaner.
func SetupDB(migrationsDir string) (*pg.DB, pg.Options, func()) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	resource, err := pool.Run(
		"postgres", "11",
		[]string{
			"POSTGRES_DB=" + pgOptions.Database,
			"POSTGRES_PASSWORD=" + pgOptions.Password,
		},
	)
	if err != nil {
		log.Panicf("Could not start resource: %s", err)
	}

	poolCleaner := func() {
		log.Printf("removing container")
		err := pool.Purge(resource)
		if err != nil {
			log.Printf("failed to purge docker pool: %s", err)
		}
	}

	options := *pgOptions
	options.Addr = fmt.Sprintf("%s:%s", options.Addr, resource.GetPort("5432/tcp"))

	var db *pg.DB
	err = pool.Retry(func() error {
		db = pg.Connect(&options)
		_, err := db.Exec("select 1")
		return err
	})
	if err != nil {
		poolCleaner()
		log.Panicf("Could not connect to db: %s", err)
	}

	migrationCollection := migrations.NewCollection()
	_, _, err = migrationCollection.Run(db, "init")
	if err != nil {
		poolCleaner()
		log.Panicf("Could not init migrations: %s", err)
	}
	err = migrationCollection.DiscoverSQLMigrations(migrationsDir)
	if err != nil {
		poolCleaner()
		log.Panicf("Failed to read migrations: %s", err)
	}
	_, _, err = migrationCollection.Run(db, "up")
	if err != nil {
		poolCleaner()
		log.Panicf("Could not migrate: %s", err)
	}

	return db, options, poolCleaner
}
