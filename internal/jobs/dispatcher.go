// Package jobs runs queued reconciliation work on a fixed worker pool.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// Reconciler is the single collaborator a worker needs: run the State
// Reconciler (§4.5) against one update intent.
type Reconciler interface {
	Reconcile(ctx context.Context, intent rfd.UpdateIntent) error
}

// Dispatcher queues batches of update intents for processing by a
// worker pool. Every intent extracted from a single push event must be
// dispatched together as one batch: a worker reconciles a batch's
// intents one at a time, in the order given, so intents from the same
// push — including repeat intents for the same document number touched
// by more than one commit — are never reconciled out of commit order
// or concurrently with each other (§5, §4.5).
type Dispatcher interface {
	Dispatch(ctx context.Context, intents []*rfd.UpdateIntent) error
	Stop()
}

// dispatcher implements Dispatcher and manages a pool of worker
// goroutines pulling update-intent batches off a buffered channel,
// following the teacher's worker-pool-over-a-buffered-channel pattern.
// Batches from different pushes may still run concurrently on
// different workers; only intents within the same batch are
// guaranteed sequential.
type dispatcher struct {
	reconciler Reconciler
	jobQueue   chan []*rfd.UpdateIntent
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher initializes a dispatcher with a worker pool. If
// maxWorkers is 0 or negative, it defaults to 1. queueCapacity is the
// number of pending batches the channel buffers before Dispatch starts
// rejecting new work.
func NewDispatcher(reconciler Reconciler, maxWorkers, queueCapacity int, logger *slog.Logger) Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	d := &dispatcher{
		reconciler: reconciler,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan []*rfd.UpdateIntent, queueCapacity),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

func (d *dispatcher) startWorkers() {
	for i := 0; i < d.maxWorkers; i++ {
		d.wg.Add(1)
		go func(workerID int) {
			defer d.wg.Done()
			d.logger.Info("starting reconcile worker", "id", workerID)
			for batch := range d.jobQueue {
				for _, intent := range batch {
					d.logger.Info("worker processing intent", "worker_id", workerID, "rfd_number", intent.Number, "branch", intent.Branch.BranchName)
					if err := d.reconciler.Reconcile(context.Background(), *intent); err != nil {
						d.logger.Error("reconcile failed", "rfd_number", intent.Number, "branch", intent.Branch.BranchName, "error", err)
					}
				}
			}
			d.logger.Info("shutting down reconcile worker", "id", workerID)
		}(i)
	}
}

// Dispatch queues a batch of update intents for sequential processing
// by a single worker. Returns an error if the queue is full.
func (d *dispatcher) Dispatch(ctx context.Context, intents []*rfd.UpdateIntent) error {
	d.logger.InfoContext(ctx, "queuing update intent batch", "count", len(intents))
	select {
	case d.jobQueue <- intents:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new update intent batch")
	}
}

// Stop gracefully shuts down the dispatcher: it closes the queue and
// waits for the workers to reconcile every batch already queued.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all reconcile jobs have finished")
}
