package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/dotgrid/internal/dots"
	"github.com/cwbudde/dotgrid/internal/encode"
	"github.com/cwbudde/dotgrid/internal/store"
	"github.com/cwbudde/dotgrid/internal/tune"
)

const (
	// progressEvery is the number of accepted points between sampler
	// progress events.
	progressEvery = 250

	// thumbSize is the longer side of stored preview images.
	thumbSize = 256

	// Coverage tuning budget for server jobs.
	tuneIters   = 30
	tunePopSize = 20
)

// runJob generates a dot pattern in the background.
// If patternStore is not nil, the record, images and sampler trace are persisted.
func runJob(ctx context.Context, jm *JobManager, patternStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Sampling is not interruptible; honour cancellation before starting.
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}
	broadcastJob(jm, jobID)

	params := job.Config.Params()
	slog.Info("Starting job",
		"job_id", jobID,
		"pattern", params.Pattern.String(),
		"width", params.Width,
		"height", params.Height,
		"spacing", params.Spacing,
	)

	var trace *store.TraceWriter
	if patternStore != nil && params.Pattern == dots.Poisson {
		trace, err = patternStore.OpenTrace(jobID)
		if err != nil {
			slog.Warn("Failed to open trace", "job_id", jobID, "error", err)
		}
	}

	onProgress := func(p dots.SampleProgress) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Accepted = p.Accepted
			j.Active = p.Active
		})
		if trace != nil {
			if err := trace.Write(p); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}
		broadcastJob(jm, jobID)
	}

	start := time.Now()
	res, err := dots.GenerateWithOptions(params, dots.Options{
		Progress:      onProgress,
		ProgressEvery: progressEvery,
	})
	if trace != nil {
		if cerr := trace.Close(); cerr != nil {
			slog.Warn("Failed to close trace", "job_id", jobID, "error", cerr)
		}
	}
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	if job.Config.Coverage > 0 {
		optimizer := tune.NewMayfly(tuneIters, tunePopSize, int64(res.Seed))
		tuned, result, err := tune.ApplyCoverage(res, job.Config.Coverage, 0, optimizer)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("coverage tuning failed: %w", err))
			return err
		}
		slog.Info("Tuned dot radius", "job_id", jobID, "radius", result.Radius, "coverage", result.Coverage)
		res = tuned
	}
	elapsed := time.Since(start)

	if patternStore != nil {
		if err := persistResult(patternStore, jobID, job.Config, res, elapsed); err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Seed = res.Seed
		j.Radius = res.Params.Radius
		j.Accepted = len(res.Points)
		j.Active = 0
		j.Coverage = res.Canvas.Coverage()
		j.EndTime = &endTime
		j.result = res
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"dots", len(res.Points),
		"seed", res.Seed,
	)

	broadcastJob(jm, jobID)
	return nil
}

// persistResult saves the record and its image artifacts.
func persistResult(patternStore store.Store, jobID string, config JobConfig, res *dots.Result, elapsed time.Duration) error {
	record := store.NewRecord(jobID, config, res, elapsed)
	if err := patternStore.SaveRecord(jobID, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	artifacts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{store.ArtifactPNG, func(w io.Writer) error { return encode.WritePNG(w, res.Canvas) }},
		{store.ArtifactSVG, func(w io.Writer) error { return encode.WriteSVG(w, res) }},
		{store.ArtifactThumb, func(w io.Writer) error {
			return encode.WriteImagePNG(w, encode.Thumbnail(res.Canvas, thumbSize))
		}},
	}
	for _, a := range artifacts {
		if err := patternStore.SaveArtifact(jobID, a.name, a.write); err != nil {
			// The record alone reproduces the image
			slog.Warn("Failed to save artifact", "job_id", jobID, "artifact", a.name, "error", err)
		}
	}
	return nil
}

// broadcastJob sends the job's current state to stream subscribers.
func broadcastJob(jm *JobManager, jobID string) {
	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(job.Event())
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
	broadcastJob(jm, jobID)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
	broadcastJob(jm, jobID)
}
