// Package janitor closes idle conversations on a schedule.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/glovera/consult/internal/archive"
	"github.com/glovera/consult/internal/session"
)

// Janitor periodically marks idle active sessions closed and archives
// their transcripts.
type Janitor struct {
	store    session.Store
	archiver archive.Archiver
	idle     time.Duration
	logger   *slog.Logger
	cron     *cron.Cron
}

func New(store session.Store, archiver archive.Archiver, idle time.Duration, logger *slog.Logger) *Janitor {
	if archiver == nil {
		archiver = archive.Noop{}
	}
	return &Janitor{
		store:    store,
		archiver: archiver,
		idle:     idle,
		logger:   logger,
	}
}

// Start schedules the sweep and begins running it. The schedule accepts
// standard cron expressions and descriptors like "@hourly".
func (j *Janitor) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	j.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Sweep closes every active session whose last update is older than the
// idle cutoff. Archive failures are logged and do not block closure.
func (j *Janitor) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.idle)
	idle, err := j.store.ListIdleActive(ctx, cutoff)
	if err != nil {
		j.logger.Error("janitor: list idle sessions", "error", err)
		return
	}
	for _, sess := range idle {
		if err := j.store.SetStatus(ctx, sess.ID, session.StatusClosed); err != nil {
			j.logger.Error("janitor: close session", "conversation_id", sess.ID, "error", err)
			continue
		}
		sess.Status = session.StatusClosed
		if err := j.archiver.Archive(ctx, sess); err != nil {
			j.logger.Error("janitor: archive transcript", "conversation_id", sess.ID, "error", err)
			continue
		}
		j.logger.Info("janitor: closed idle session", "conversation_id", sess.ID)
	}
}
