// Copyright (c) 2026 Meridia Health. All rights reserved.

package prefs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// # Remote Mirror

// Mirror pushes a full preference document to the remote store.
//
// Remote state is advisory, never authoritative; implementations report
// failure through the error return and must not retry internally.
type Mirror interface {
	/*
		Push mirrors one sync job to the remote store.

		Parameters:
		  - ctx: Deadline for the attempt
		  - job: The document and credential to send

		Returns:
		  - error: Transport or remote failures
	*/
	Push(ctx context.Context, job SyncJob) error
}

// pushTimeout bounds a single mirror attempt so a stalled remote cannot
// wedge the worker.
const pushTimeout = 10 * time.Second

// syncQueueDepth is how many pending jobs the queue holds before new jobs
// are dropped. Sync is advisory, so overflow sheds work instead of
// blocking the mutating caller.
const syncQueueDepth = 256

// # Syncer

// Syncer delivers outbound sync jobs to the mirror in the order they were
// enqueued, on a single worker goroutine.
//
// Failures are logged and swallowed: never propagated, never retried,
// never allowed to block or roll back the local mutation that produced
// the job.
type Syncer struct {
	mirror Mirror
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	jobs   chan SyncJob
	done   sync.WaitGroup
}

// NewSyncer constructs a syncer. Call Start to begin delivery and Close
// to drain and stop.
func NewSyncer(mirror Mirror, logger *slog.Logger) *Syncer {
	return &Syncer{
		mirror: mirror,
		logger: logger.With(slog.String("component", "prefs_syncer")),
		jobs:   make(chan SyncJob, syncQueueDepth),
	}
}

// Start launches the delivery worker.
func (s *Syncer) Start() {
	s.done.Add(1)
	go func() {
		defer s.done.Done()
		for job := range s.jobs {
			s.deliver(job)
		}
	}()
}

// Enqueue queues one job for delivery. When the queue is full, or the
// syncer is already closed, the job is dropped with a warning rather
// than blocking or crashing the caller.
func (s *Syncer) Enqueue(job SyncJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("prefs_sync_after_close",
			slog.String("identity_id", job.IdentityID))
		return
	}

	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("prefs_sync_queue_full",
			slog.String("identity_id", job.IdentityID))
	}
}

// Close stops accepting jobs, drains the queue, and waits for the worker
// to exit. Safe to call more than once.
func (s *Syncer) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()
	s.done.Wait()
}

func (s *Syncer) deliver(job SyncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := s.mirror.Push(ctx, job); err != nil {
		s.logger.Warn("prefs_sync_failed",
			slog.String("identity_id", job.IdentityID),
			slog.Any("error", err))
		return
	}
	s.logger.Debug("prefs_sync_delivered",
		slog.String("identity_id", job.IdentityID))
}
