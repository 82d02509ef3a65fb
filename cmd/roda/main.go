// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/rodafin/roda/component"
	"github.com/rodafin/roda/configuration"
)

var stop = make(chan os.Signal, 1)

func main() {
	configPath := pflag.String("config", "roda.yaml", "path to the configuration file")
	pflag.Parse()

	cfg, err := configuration.Load(*configPath)
	if err != nil {
		logrus.Fatal(err.Error())
	}

	manager := component.Prepare(cfg)
	manager.Start()
	graceful(manager.Stop)
}

func graceful(that func()) {
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logrus.Info("gracefully stopping...")
	that()
}
