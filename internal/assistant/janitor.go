package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor periodically prunes old usage counters
type Janitor struct {
	cron      *cron.Cron
	counter   UsageCounter
	retention int
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.Mutex
	running   bool
}

// NewJanitor creates a janitor keeping retentionDays days of counters.
func NewJanitor(counter UsageCounter, retentionDays int, logger *zap.Logger) *Janitor {
	return &Janitor{
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		counter:   counter,
		retention: retentionDays,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the prune job with a six-field cron spec.
func (j *Janitor) Start(spec string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return fmt.Errorf("janitor already running")
	}

	if _, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", spec, err)
	}

	j.logger.Info("Starting usage janitor", zap.String("spec", spec), zap.Int("retention_days", j.retention))
	j.cron.Start()
	j.running = true
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.running = false
	j.logger.Info("Usage janitor stopped")
}

// RunOnce deletes counters older than the retention window.
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention).Format(dayLayout)

	deleted, err := j.counter.Prune(ctx, cutoff)
	if err != nil {
		j.logger.Error("Pruning usage counters failed", zap.String("before", cutoff), zap.Error(err))
		return 0, err
	}

	j.logger.Info("Pruned usage counters", zap.String("before", cutoff), zap.Int64("deleted", deleted))
	return deleted, nil
}
