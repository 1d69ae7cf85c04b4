package server

import (
	"context"
	"os"
	"testing"

	"github.com/cwbudde/dotgrid/internal/dots"
	"github.com/cwbudde/dotgrid/internal/store"
)

func seedPtr(v uint64) *uint64 { return &v }

func TestRunJob_Grid(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	if err := runJob(context.Background(), jm, nil, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Fatalf("Job should be completed, got %s", updated.State)
	}
	if updated.Accepted != 64 {
		t.Errorf("Expected 64 dots, got %d", updated.Accepted)
	}
	// 64 discs of radius 2 cover 13 pixels each
	if want := 64.0 * 13 / 4096; updated.Coverage != want {
		t.Errorf("Coverage = %v, want %v", updated.Coverage, want)
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}
	if updated.Result() == nil {
		t.Error("Result should be kept in memory")
	}
}

func TestRunJob_PoissonWithStore(t *testing.T) {
	fs, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	jm := NewJobManager()
	config := testConfig()
	config.Pattern = dots.Poisson
	config.Seed = seedPtr(7)
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, fs, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Fatalf("Job should be completed, got %s (%s)", updated.State, updated.Error)
	}
	if updated.Seed != 7 {
		t.Errorf("Seed = %d, want 7", updated.Seed)
	}

	record, err := fs.LoadRecord(job.ID)
	if err != nil {
		t.Fatalf("Record should be persisted: %v", err)
	}
	if len(record.Points) != updated.Accepted {
		t.Errorf("Record has %d points, job reports %d", len(record.Points), updated.Accepted)
	}

	for _, name := range []string{store.ArtifactPNG, store.ArtifactSVG, store.ArtifactThumb} {
		path, err := fs.ArtifactPath(job.ID, name)
		if err != nil {
			t.Errorf("Artifact %s missing: %v", name, err)
			continue
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("Artifact %s is empty", name)
		}
	}

	entries, err := fs.LoadTrace(job.ID)
	if err != nil {
		t.Fatalf("Trace should be written: %v", err)
	}
	if len(entries) == 0 || !entries[len(entries)-1].Done {
		t.Errorf("Trace should end with the final progress entry, got %+v", entries)
	}

	// The stored record reproduces the in-memory image
	rendered, err := record.Render()
	if err != nil {
		t.Fatal(err)
	}
	if string(rendered.Canvas.Bytes()) != string(updated.Result().Canvas.Bytes()) {
		t.Error("Re-rendered record differs from job result")
	}
}

func TestRunJob_Coverage(t *testing.T) {
	jm := NewJobManager()
	config := testConfig()
	config.Radius = 0
	config.Coverage = 0.3
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.Radius <= 0 || updated.Radius > config.Spacing {
		t.Errorf("Tuned radius %d out of range", updated.Radius)
	}
	if updated.Result().Params.Radius != updated.Radius {
		t.Error("Result should be rendered at the tuned radius")
	}
}

func TestRunJob_InvalidConfig(t *testing.T) {
	jm := NewJobManager()
	config := testConfig()
	config.Width = 0
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, job.ID); err == nil {
		t.Error("runJob should fail with zero width")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_Cancelled(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runJob(ctx, jm, nil, job.ID); err == nil {
		t.Error("runJob should return the context error")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunJob_UnknownJob(t *testing.T) {
	if err := runJob(context.Background(), NewJobManager(), nil, "missing"); err == nil {
		t.Error("runJob should fail for unknown job")
	}
}
