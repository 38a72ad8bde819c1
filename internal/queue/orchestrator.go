package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mhadifilms/reverie/internal/catalog"
	"github.com/mhadifilms/reverie/internal/fetch"
	"github.com/mhadifilms/reverie/internal/logctx"
	"github.com/mhadifilms/reverie/internal/resolve"
	"github.com/mhadifilms/reverie/internal/store"
	"github.com/mhadifilms/reverie/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const hookBuffer = 16

// ActiveJob is an in-flight download occupying one concurrency slot.
type ActiveJob struct {
	TrackKey string
	RunID    string
	Progress float64
	Attempt  int

	cancel context.CancelFunc
	done   atomic.Bool // set on terminal outcome or cancellation; late progress is dropped
}

// JobStatus is a read-only snapshot of an active job.
type JobStatus struct {
	TrackKey string  `json:"track_key"`
	RunID    string  `json:"run_id"`
	Progress float64 `json:"progress"`
	Attempt  int     `json:"attempt"`
}

// FailedDownload carries the terminal classified error for a track whose
// retries are exhausted.
type FailedDownload struct {
	Track *catalog.Track
	Err   error
}

// Orchestrator is the download dispatcher: it keeps a deduplicated pending
// queue of job keys, admits them into a bounded active table, and runs one
// retrying download pipeline per admitted key. The dispatch loop is started
// lazily on the first enqueue and stops once queue and table drain; the next
// enqueue starts it again.
type Orchestrator struct {
	repo     catalog.TrackRepository
	resolver resolve.Resolver
	fetcher  fetch.Fetcher
	writer   store.Writer
	tel      *telemetry.Telemetry

	maxConcurrent int
	maxRetries    int
	backoffBase   time.Duration

	ctx         context.Context
	group       errgroup.Group
	completions chan string

	mu      sync.Mutex
	pending *pendingQueue
	active  map[string]*ActiveJob
	running bool

	OnDownloadFinished chan *catalog.Track
	OnDownloadFailed   chan *FailedDownload
}

// NewOrchestrator builds an idle orchestrator. ctx bounds the lifetime of
// every dispatch loop and job it ever starts.
func NewOrchestrator(
	ctx context.Context,
	repo catalog.TrackRepository,
	resolver resolve.Resolver,
	fetcher fetch.Fetcher,
	writer store.Writer,
	tel *telemetry.Telemetry,
	maxConcurrent int,
	maxRetries int,
) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Orchestrator{
		repo:          repo,
		resolver:      resolver,
		fetcher:       fetcher,
		writer:        writer,
		tel:           tel,
		maxConcurrent: maxConcurrent,
		maxRetries:    maxRetries,
		backoffBase:   time.Second,
		ctx:           ctx,
		completions:   make(chan string, maxConcurrent),
		pending:       newPendingQueue(),
		active:        make(map[string]*ActiveJob),

		OnDownloadFinished: make(chan *catalog.Track, hookBuffer),
		OnDownloadFailed:   make(chan *FailedDownload, hookBuffer),
	}
}

// Close releases the event channels. Call after the orchestrator is idle.
func (o *Orchestrator) Close() {
	close(o.OnDownloadFinished)
	close(o.OnDownloadFailed)
}

// Enqueue queues a source identifier for download. Keys that are already
// pending, already downloading, or already downloaded are ignored. Starts the
// dispatch loop if it is not running.
func (o *Orchestrator) Enqueue(key string) {
	if key == "" {
		return
	}

	logger := logctx.LoggerFromContext(o.ctx)

	track, err := o.repo.Find(key)
	if err == nil && track.DownloadState == catalog.StateDownloaded {
		logger.Debug("skipping enqueue of downloaded track", "source_id", key)

		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.active[key]; ok {
		return
	}

	if !o.pending.Push(key) {
		return
	}

	o.tel.IncrementQueueDepth()

	if err == nil {
		if serr := o.repo.SetState(key, catalog.StateQueued); serr != nil {
			logger.Error("failed to mark track queued", "source_id", key, "err", serr)
		}
	}

	if !o.running {
		o.running = true

		go o.run(o.ctx)
	}
}

// EnqueueAll queues every downloadable track of the batch, relying on
// Enqueue's dedup for tracks that are already queued or in flight.
func (o *Orchestrator) EnqueueAll(tracks []*catalog.Track) {
	for _, track := range tracks {
		if !track.Downloadable() {
			continue
		}

		o.Enqueue(track.SourceID)
	}
}

// Cancel aborts the download for the given key. An in-flight job has its
// pipeline cancelled; a pending key is simply removed. The track record is
// reset to not_downloaded either way. Cancellation is best-effort: a job that
// already persisted its file keeps it, and the cleanup sweep removes it later.
func (o *Orchestrator) Cancel(key string) {
	o.mu.Lock()

	if job, ok := o.active[key]; ok {
		job.done.Store(true)
		job.cancel()
		o.mu.Unlock()

		return
	}

	removed := o.pending.Remove(key)
	o.mu.Unlock()

	if !removed {
		return
	}

	o.tel.DecrementQueueDepth()

	logger := logctx.LoggerFromContext(o.ctx)
	if err := o.repo.ResetDownload(key); err != nil {
		logger.Error("failed to reset cancelled download", "source_id", key, "err", err)
	}

	logger.Info("removed pending download", "source_id", key)
}

// Jobs returns a snapshot of the active job table.
func (o *Orchestrator) Jobs() []JobStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	jobs := make([]JobStatus, 0, len(o.active))
	for _, job := range o.active {
		jobs = append(jobs, JobStatus{
			TrackKey: job.TrackKey,
			RunID:    job.RunID,
			Progress: job.Progress,
			Attempt:  job.Attempt,
		})
	}

	return jobs
}

// QueueDepth returns the number of keys waiting for a slot.
func (o *Orchestrator) QueueDepth() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.pending.Len()
}

// Idle reports whether the dispatch loop has drained and stopped.
func (o *Orchestrator) Idle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return !o.running
}

// run is the dispatch loop: admit while slots are free, then block until a
// job completes or the lifetime context ends. Exactly one run loop exists at
// a time, guarded by the running flag.
func (o *Orchestrator) run(ctx context.Context) {
	logger := logctx.LoggerFromContext(ctx)
	logger.Debug("dispatch loop started")

	for {
		o.admit(ctx)

		o.mu.Lock()
		if len(o.active) == 0 && o.pending.Len() == 0 {
			o.running = false
			o.mu.Unlock()

			logger.Debug("dispatch loop drained")

			return
		}
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			o.drain()
			logger.Debug("dispatch loop stopped", "reason", "context_cancelled")

			return
		case key := <-o.completions:
			o.mu.Lock()
			delete(o.active, key)
			o.mu.Unlock()
		}
	}
}

// admit moves pending keys into the active table until the concurrency bound
// is hit, spawning one job runner per admitted key. A key whose track record
// cannot be found is dropped with an error log; that is a caller bug, not a
// user-facing failure.
func (o *Orchestrator) admit(ctx context.Context) {
	logger := logctx.LoggerFromContext(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	for len(o.active) < o.maxConcurrent {
		key, ok := o.pending.Pop()
		if !ok {
			return
		}

		o.tel.DecrementQueueDepth()

		track, err := o.repo.Find(key)
		if err != nil {
			logger.Error("dropping queued download without a track record", "source_id", key, "err", err)

			continue
		}

		jobCtx, cancel := context.WithCancel(ctx)
		job := &ActiveJob{
			TrackKey: key,
			RunID:    uuid.NewString(),
			Attempt:  1,
			cancel:   cancel,
		}
		o.active[key] = job

		o.group.Go(func() error {
			defer cancel()
			o.runJob(jobCtx, job, track)

			return nil
		})
	}
}

// drain is the shutdown path: cancel every active job and collect their
// completions so no runner goroutine is left behind.
func (o *Orchestrator) drain() {
	o.mu.Lock()
	for _, job := range o.active {
		job.done.Store(true)
		job.cancel()
	}
	remaining := len(o.active)
	o.mu.Unlock()

	for remaining > 0 {
		key := <-o.completions

		o.mu.Lock()
		delete(o.active, key)
		remaining = len(o.active)
		o.mu.Unlock()
	}

	_ = o.group.Wait()

	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

func (o *Orchestrator) setAttempt(job *ActiveJob, attempt int) {
	o.mu.Lock()
	job.Attempt = attempt
	o.mu.Unlock()
}

// updateProgress records transfer progress on the active job and the track
// record. Progress that arrives after cancellation or a terminal write is
// discarded; the repository additionally ignores progress for tracks that are
// no longer downloading.
func (o *Orchestrator) updateProgress(job *ActiveJob, fraction float64) {
	if job.done.Load() {
		return
	}

	o.mu.Lock()
	job.Progress = fraction
	o.mu.Unlock()

	_ = o.repo.SetProgress(job.TrackKey, fraction)
}

func (o *Orchestrator) emitFinished(track *catalog.Track) {
	select {
	case o.OnDownloadFinished <- track:
	default:
	}
}

func (o *Orchestrator) emitFailed(track *catalog.Track, err error) {
	select {
	case o.OnDownloadFailed <- &FailedDownload{Track: track, Err: err}:
	default:
	}
}
