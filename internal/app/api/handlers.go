// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rodafin/roda/internal/app/factory"
	"github.com/rodafin/roda/internal/app/vault"
)

func (s *Server) GetCircles(ctx echo.Context) error {
	circles := s.factory.Circles()
	out := make([]SchemaCircle, 0, len(circles))
	for _, c := range circles {
		out = append(out, s.circleSchema(c))
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *Server) GetCircle(ctx echo.Context) error {
	c, ok := s.factory.Lookup(ctx.Param("circleID"))
	if !ok {
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError("circle not found"))
	}
	return ctx.JSON(http.StatusOK, s.circleSchema(c))
}

func (s *Server) GetMember(ctx echo.Context) error {
	c, ok := s.factory.Lookup(ctx.Param("circleID"))
	if !ok {
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError("circle not found"))
	}
	address := ctx.Param("address")
	if address == "" {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("empty address"))
	}

	member := SchemaMember{
		Address:      address,
		Enrolled:     c.Vault.IsEnrolled(address),
		Active:       c.Vault.HasActivePosition(address),
		ClaimBalance: c.Claims.BalanceOf(address),
	}
	if position, ok := c.Vault.PositionOf(address); ok {
		member.QuotaID = position.QuotaID
		member.InstallmentsPaid = position.InstallmentsPaid
		member.TotalPaid = position.TotalPaid
		member.PositionStatus = string(position.Status)
	}
	return ctx.JSON(http.StatusOK, member)
}

func (s *Server) GetRound(ctx echo.Context) error {
	c, ok := s.factory.Lookup(ctx.Param("circleID"))
	if !ok {
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError("circle not found"))
	}
	quotaID, err := strconv.Atoi(ctx.Param("quotaID"))
	if err != nil || quotaID < vault.QuotaEarly || quotaID > vault.QuotaLate {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`quotaID` should be 0, 1 or 2"))
	}
	roundIndex, err := strconv.Atoi(ctx.Param("roundIndex"))
	if err != nil || roundIndex < 0 || roundIndex >= c.Vault.RoundsPerQuota() {
		return ctx.JSON(http.StatusBadRequest,
			NewSingleMessageError(fmt.Sprintf("`roundIndex` should be in range [0, %d)", c.Vault.RoundsPerQuota())))
	}

	key := fmt.Sprintf("%s/%d/%d", c.ID, quotaID, roundIndex)
	if cached, ok := s.settled.Get(key); ok {
		return ctx.JSON(http.StatusOK, cached)
	}

	round := SchemaRound{
		QuotaID:    quotaID,
		RoundIndex: roundIndex,
		Closeable:  c.Vault.CanCloseWindow(quotaID, roundIndex),
	}
	pot, err := c.Vault.LivePot(quotaID, roundIndex)
	if err != nil {
		s.log.Error(err)
		return ctx.JSON(http.StatusInternalServerError, struct{}{})
	}
	round.Pot = pot

	if snap, ok := c.Vault.SnapshotOf(quotaID, roundIndex); ok {
		round.Snapshotted = true
		round.Participants = snap.Participants
		round.Settled = snap.Settled

		draw, err := c.Vault.DrawOf(quotaID, roundIndex)
		if err != nil {
			s.log.Error(err)
			return ctx.JSON(http.StatusInternalServerError, struct{}{})
		}
		round.Draw = &SchemaDraw{
			RequestID: draw.RequestID.String(),
			Completed: draw.Completed,
			Order:     draw.Order,
		}
	}
	if settlement, ok := c.Vault.SettlementOf(quotaID, roundIndex); ok {
		round.Settlement = &SchemaSettlement{
			Winner:     settlement.Winner,
			Amount:     settlement.Amount,
			Proof:      settlement.Proof,
			RedeemedAt: settlement.RedeemedAt,
		}
		// settled rounds never change again
		s.settled.Add(key, round)
	}
	return ctx.JSON(http.StatusOK, round)
}

func (s *Server) circleSchema(c *factory.Circle) SchemaCircle {
	cfg := c.Vault.Config()
	out := SchemaCircle{
		CircleID:          c.ID,
		Name:              cfg.Name,
		Creator:           cfg.Creator,
		Status:            string(c.Vault.Status()),
		TargetValue:       cfg.TargetValue,
		TotalInstallments: cfg.TotalInstallments,
		InstallmentAmount: cfg.InstallmentAmount,
		NumUsers:          cfg.NumUsers,
		NumRounds:         cfg.NumRounds,
		ExitFeeBps:        cfg.ExitFeeBps,
		StartTime:         cfg.StartTime,
		Duration:          cfg.Duration,
		RoundDuration:     cfg.RoundDuration,
		EnrolledCount:     c.Vault.EnrolledCount(),
		CurrentPhase:      c.Vault.PhaseAt(time.Now().Unix()),
	}
	for quotaID := vault.QuotaEarly; quotaID <= vault.QuotaLate; quotaID++ {
		deadline, err := c.Vault.QuotaDeadline(quotaID)
		if err != nil {
			continue
		}
		filled, err := c.Vault.QuotaFilled(quotaID)
		if err != nil {
			continue
		}
		out.Quotas = append(out.Quotas, SchemaQuota{
			QuotaID:  quotaID,
			Cap:      cfg.QuotaCaps[quotaID],
			Filled:   filled,
			Deadline: deadline,
		})
	}
	return out
}
