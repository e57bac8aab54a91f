package scheduler

import (
	"fmt"
	"time"

	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// AbandonedCartSweeper deletes stale empty carts and reports how many went.
type AbandonedCartSweeper interface {
	SweepAbandoned(maxAge time.Duration) (int64, error)
}

// CartSweeper removes empty open orders on a cron schedule
type CartSweeper struct {
	cron    *cron.Cron
	sweeper AbandonedCartSweeper
	spec    string
	maxAge  time.Duration
}

func NewCartSweeper(sweeper AbandonedCartSweeper, spec string, maxAge time.Duration) *CartSweeper {
	return &CartSweeper{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    spec,
		maxAge:  maxAge,
	}
}

// Start registers the sweep job and starts the scheduler goroutine
func (s *CartSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for cart sweep", err, logger.Fields{
			"spec": s.spec,
		})
		return fmt.Errorf("invalid cart sweep schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	logger.Info("Cart sweeper started", logger.Fields{
		"spec":    s.spec,
		"max_age": s.maxAge.String(),
	})
	return nil
}

// RunOnce performs a single sweep
func (s *CartSweeper) RunOnce() {
	logger.Debug("Starting scheduled cart sweep")

	deleted, err := s.sweeper.SweepAbandoned(s.maxAge)
	if err != nil {
		logger.Error("Cart sweep failed", err)
		return
	}

	logger.Info("Cart sweep completed", logger.Fields{
		"deleted": deleted,
	})
}

// Stop waits for a running sweep to finish
func (s *CartSweeper) Stop() {
	logger.Info("Stopping cart sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Cart sweeper stopped")
}
