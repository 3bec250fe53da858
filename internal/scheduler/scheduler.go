// Package scheduler runs the background settlement sweep: a periodic pass
// that settles every auction whose closing time has passed, so sellers do not
// have to trigger settlement themselves.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/galdos/auctionhouse/internal/config"
	"github.com/galdos/auctionhouse/internal/service"
)

// Scheduler owns the settlement sweep goroutine.  Call Start(ctx) once from
// main(); cancel the context to shut it down gracefully.
type Scheduler struct {
	settlementSvc *service.SettlementService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(settlementSvc *service.SettlementService, cfg *config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		settlementSvc: settlementSvc,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches the sweep goroutine.  It returns immediately; the loop runs
// until ctx is cancelled.  A no-op when the sweep is disabled by config.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Auction.SweepEnabled {
		s.logger.Info("settlement sweep disabled by config")
		return
	}
	go s.sweepLoop(ctx)
	s.logger.Info("scheduler started", "sweep_interval", s.cfg.Auction.SweepInterval)
}

// sweepLoop settles due auctions on every tick.  Individual settlement
// failures are handled inside SettleDue; only batch-level errors surface here.
func (s *Scheduler) sweepLoop(ctx context.Context) {
	defer s.recoverAndLog("sweepLoop")

	ticker := time.NewTicker(s.cfg.Auction.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweepLoop: shutting down")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep is the inner body of sweepLoop, extracted so a panic in one pass
// does not kill the ticker loop.
func (s *Scheduler) runSweep(ctx context.Context) {
	defer s.recoverAndLog("runSweep")

	settled, err := s.settlementSvc.SettleDue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("sweep: SettleDue", "err", err)
		return
	}
	if settled > 0 {
		s.logger.Info("sweep: settled auctions", "count", settled)
	}
}

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
