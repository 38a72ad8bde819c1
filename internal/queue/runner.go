package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mhadifilms/reverie/internal/catalog"
	"github.com/mhadifilms/reverie/internal/logctx"
)

type attemptResult struct {
	relPath         string
	fileSize        int64
	durationSeconds int
}

// runJob drives one download through up to maxRetries attempts of the
// resolve -> transfer -> persist pipeline, with exponential backoff between
// attempts. It owns every write to the track record for the duration of the
// job and always reports completion to the dispatch loop.
func (o *Orchestrator) runJob(ctx context.Context, job *ActiveJob, track *catalog.Track) {
	defer func() { o.completions <- job.TrackKey }()

	logger := logctx.LoggerFromContext(ctx).With("source_id", job.TrackKey, "run_id", job.RunID)
	start := time.Now()

	o.tel.IncrementActiveDownloads()
	defer o.tel.DecrementActiveDownloads()

	if err := o.repo.SetState(job.TrackKey, catalog.StateDownloading); err != nil {
		logger.Error("failed to mark track downloading", "err", err)
	}

	var lastErr error

	for attempt := 1; ; attempt++ {
		o.setAttempt(job, attempt)

		result, err := o.runAttempt(ctx, job, track)
		if err == nil {
			job.done.Store(true)

			if merr := o.repo.MarkDownloaded(job.TrackKey, result.relPath, result.fileSize, result.durationSeconds, time.Now()); merr != nil {
				logger.Error("failed to record finished download", "err", merr)
			}

			logger.Info("track downloaded",
				"attempt", attempt,
				"path", result.relPath,
				"size", humanize.Bytes(uint64(result.fileSize)),
			)

			o.tel.RecordDownload("success", time.Since(start))
			o.emitFinished(track)

			return
		}

		if ctx.Err() != nil {
			o.abandon(job, logger)
			o.tel.RecordDownload("cancelled", time.Since(start))

			return
		}

		lastErr = err
		logger.Warn("download attempt failed", "attempt", attempt, "err", err)

		if attempt >= o.maxRetries {
			break
		}

		// Delay derives from the pre-increment attempt number, so the first
		// retry waits one base interval rather than zero.
		delay := o.backoffBase << (attempt - 1)
		o.tel.RecordRetry()

		select {
		case <-ctx.Done():
			o.abandon(job, logger)
			o.tel.RecordDownload("cancelled", time.Since(start))

			return
		case <-time.After(delay):
		}
	}

	job.done.Store(true)

	if err := o.repo.MarkFailed(job.TrackKey); err != nil {
		logger.Error("failed to mark track failed", "err", err)
	}

	final := &MaxRetriesError{SourceID: job.TrackKey, Attempts: o.maxRetries, Err: lastErr}
	logger.Error("download failed permanently", "attempts", o.maxRetries, "err", final)

	o.tel.RecordDownload("error", time.Since(start))
	o.emitFailed(track, final)
}

// runAttempt executes one full pass of the pipeline. Resolution is redone on
// every attempt: a stale audio URL is never reused, since resolution itself
// may be the failing stage.
func (o *Orchestrator) runAttempt(ctx context.Context, job *ActiveJob, track *catalog.Track) (*attemptResult, error) {
	src, err := o.resolver.Resolve(ctx, job.TrackKey)
	if err != nil {
		return nil, classifyResolve(job.TrackKey, err)
	}

	data, err := o.fetcher.Fetch(ctx, src.AudioURL, func(fraction float64) {
		o.updateProgress(job, fraction)
	})
	if err != nil {
		return nil, classifyFetch(src.AudioURL, err)
	}

	filename := fmt.Sprintf("%s.%s", track.ID, src.Ext)

	relPath, err := o.writer.Save(data, filename)
	if err != nil {
		return nil, classifyStore(filename, err)
	}

	return &attemptResult{
		relPath:         relPath,
		fileSize:        int64(len(data)),
		durationSeconds: src.DurationSeconds,
	}, nil
}

// abandon handles a cancelled job: the track returns to not_downloaded with
// zero progress and no error is surfaced.
func (o *Orchestrator) abandon(job *ActiveJob, logger *slog.Logger) {
	job.done.Store(true)

	if err := o.repo.ResetDownload(job.TrackKey); err != nil {
		logger.Error("failed to reset cancelled download", "err", err)
	}

	logger.Info("download cancelled")
}
