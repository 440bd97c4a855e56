package service

import (
	"context"
	"log"
	"time"

	"file-manager-server/config"
	"file-manager-server/internal/ports"
)

// Sweeper : periodic cleanup of expired share grants and stale unverified
// accounts. Each pass is idempotent and a failed pass only logs; the next tick
// retries.
type Sweeper struct {
	fileRepository     ports.FileRepository
	userRepository     ports.UserRepository
	db                 *config.Database
	shareInterval      time.Duration
	unverifiedInterval time.Duration
}

func NewSweeper(fileRepository ports.FileRepository, userRepository ports.UserRepository, db *config.Database, cfg *config.SweepConfig) *Sweeper {
	return &Sweeper{
		fileRepository:     fileRepository,
		userRepository:     userRepository,
		db:                 db,
		shareInterval:      parseIntervalOr(cfg.ShareInterval, time.Hour),
		unverifiedInterval: parseIntervalOr(cfg.UnverifiedInterval, 24*time.Hour),
	}
}

func parseIntervalOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Run blocks until ctx is cancelled, firing both sweeps on their own tickers
func (sweeper *Sweeper) Run(ctx context.Context) {
	shareTicker := time.NewTicker(sweeper.shareInterval)
	defer shareTicker.Stop()
	unverifiedTicker := time.NewTicker(sweeper.unverifiedInterval)
	defer unverifiedTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-shareTicker.C:
			sweeper.sweepShares(ctx)
		case <-unverifiedTicker.C:
			sweeper.sweepUnverified(ctx)
		}
	}
}

func (sweeper *Sweeper) sweepShares(ctx context.Context) {
	cleared, err := sweeper.fileRepository.SweepExpiredShares(ctx, sweeper.db.DB)
	if err != nil {
		log.Printf("share sweep failed: %v", err)
		return
	}
	if cleared > 0 {
		log.Printf("share sweep cleared %d expired link(s)", cleared)
	}
}

func (sweeper *Sweeper) sweepUnverified(ctx context.Context) {
	removed, err := sweeper.userRepository.SweepExpiredUnverified(ctx, sweeper.db.DB)
	if err != nil {
		log.Printf("unverified account sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("unverified account sweep removed %d account(s)", removed)
	}
}
