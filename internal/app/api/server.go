// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

// Package api serves the read-only query surface of the service. All
// answers come from the live in-memory circles; settled rounds are
// immutable and therefore cached.
package api

import (
	"context"
	"net/http"

	lru "github.com/hashicorp/golang-lru"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rodafin/roda/configuration"
	"github.com/rodafin/roda/internal/app/factory"
	"github.com/rodafin/roda/observability"
)

type Server struct {
	echo    *echo.Echo
	log     *logrus.Logger
	addr    string
	factory *factory.Factory
	// settled holds responses of settled rounds, keyed circle/quota/round
	settled *lru.Cache
}

func NewServer(cfg *configuration.Configuration, obs *observability.Observability, f *factory.Factory) *Server {
	log := obs.Log()
	cache, err := lru.New(cfg.API.CacheSize)
	if err != nil {
		log.Fatal(err.Error())
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		log:     log,
		addr:    cfg.API.Addr,
		factory: f,
		settled: cache,
	}

	e.GET("/api/circles", s.GetCircles)
	e.GET("/api/circle/:circleID", s.GetCircle)
	e.GET("/api/circle/:circleID/member/:address", s.GetMember)
	e.GET("/api/circle/:circleID/quota/:quotaID/round/:roundIndex", s.GetRound)
	return s
}

func (s *Server) Start() {
	go func() {
		err := s.echo.Start(s.addr)
		if err != http.ErrServerClosed {
			s.log.Error(errors.Wrap(err, "api server start"))
		}
	}()
}

func (s *Server) Stop() {
	if err := s.echo.Shutdown(context.Background()); err != nil {
		s.log.Error(errors.Wrap(err, "api server shutdown"))
	}
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
