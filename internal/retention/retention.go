// Package retention periodically deletes expired calendar files and old
// conversation turns.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/metrics"
)

// DefaultSchedule runs the sweep once an hour.
const DefaultSchedule = "@every 1h"

// FilePurger removes expired calendar files.
type FilePurger interface {
	Purge(ctx context.Context) (int64, error)
}

// TurnPruner removes conversation turns older than a cutoff.
type TurnPruner interface {
	DeleteConversationTurnsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config controls what the sweeper deletes and when.
type Config struct {
	Schedule string
	// HistoryRetention is how long conversation turns are kept. Zero keeps
	// them forever.
	HistoryRetention time.Duration
}

// Sweeper runs retention on a cron schedule.
type Sweeper struct {
	files   FilePurger
	turns   TurnPruner
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	cron    *cron.Cron
	now     func() time.Time
}

// New creates a sweeper. files or turns may be nil when the backing store
// expires data on its own or history is disabled.
func New(files FilePurger, turns TurnPruner, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Sweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		files:   files,
		turns:   turns,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Start schedules the sweep. It fails on an invalid schedule expression.
func (s *Sweeper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron = c
	c.Start()
	s.logger.Info("retention sweeper started", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("retention sweeper stopped")
}

// RunOnce performs a single sweep. Failures are logged; one failing table
// does not stop the other.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if s.files != nil {
		n, err := s.files.Purge(ctx)
		if err != nil {
			s.logger.Error("failed to purge calendar files", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("purged expired calendar files", zap.Int64("count", n))
			s.metrics.RowsSwept("calendar_files", n)
		}
	}

	if s.turns != nil && s.cfg.HistoryRetention > 0 {
		cutoff := s.now().Add(-s.cfg.HistoryRetention)
		n, err := s.turns.DeleteConversationTurnsBefore(ctx, cutoff)
		if err != nil {
			s.logger.Error("failed to prune conversation history", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("pruned conversation history", zap.Int64("count", n), zap.Time("cutoff", cutoff))
			s.metrics.RowsSwept("conversation_turns", n)
		}
	}
}
