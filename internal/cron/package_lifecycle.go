// Package cron runs the periodic package lifecycle sweep: expiring packages
// past their end date and starting queued packages whose start has come.
package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PackageStore is the part of the package repository the sweep touches.
type PackageStore interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	PromoteDue(ctx context.Context, now time.Time) (int64, error)
}

// PackageLifecycle moves packages between active, expired and pending as
// time passes.
type PackageLifecycle struct {
	store   PackageStore
	log     *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

func NewPackageLifecycle(store PackageStore, log *zap.Logger) *PackageLifecycle {
	return &PackageLifecycle{store: store, log: log, now: time.Now, timeout: 30 * time.Second}
}

// Sweep expires first so a package ending today frees the slot before the
// next queued one is promoted.
func (p *PackageLifecycle) Sweep(ctx context.Context) error {
	now := p.now().UTC()
	expired, err := p.store.ExpireDue(ctx, now)
	if err != nil {
		p.log.Error("expire packages", zap.Error(err))
		return err
	}
	promoted, err := p.store.PromoteDue(ctx, now)
	if err != nil {
		p.log.Error("promote packages", zap.Error(err))
		return err
	}
	if expired > 0 || promoted > 0 {
		p.log.Info("package sweep", zap.Int64("expired", expired), zap.Int64("promoted", promoted))
	}
	return nil
}

// Start schedules the sweep and starts the scheduler. Overlapping runs are
// skipped. Stop the returned cron on shutdown.
func Start(schedule string, lc *PackageLifecycle, log *zap.Logger) (*cron.Cron, error) {
	cl := zapCronLogger{log.Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), lc.timeout)
		defer cancel()
		_ = lc.Sweep(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info("package sweep scheduled", zap.String("schedule", schedule))
	return c, nil
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct{ s *zap.SugaredLogger }

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
