package server

import (
	"sync"
	"testing"

	"github.com/cwbudde/dotgrid/internal/dots"
)

func testConfig() JobConfig {
	return JobConfig{
		Width:   64,
		Height:  64,
		Radius:  2,
		Spacing: 8,
		Pattern: dots.Grid,
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	config := testConfig()
	config.Pattern = dots.Poisson
	job := jm.CreateJob(config)

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if job.Config.Pattern != dots.Poisson || job.Radius != 2 {
		t.Errorf("Config not set correctly: %+v", job)
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("Job should exist")
	}
	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	snapshot, _ := jm.GetJob(job.ID)
	snapshot.State = StateFailed

	current, _ := jm.GetJob(job.ID)
	if current.State != StatePending {
		t.Errorf("Mutating a snapshot changed the job: %s", current.State)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(testConfig())
	jm.CreateJob(testConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].StartTime.After(jobs[1].StartTime) {
		t.Error("Jobs should be ordered oldest first")
	}
	if jobs[0].ID != first.ID && jobs[0].StartTime.Before(first.StartTime) {
		t.Error("Unexpected ordering")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Accepted = 10
		j.Active = 4
	})
	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Accepted != 10 || updated.Active != 4 {
		t.Errorf("Progress should be updated, got %d/%d", updated.Accepted, updated.Active)
	}

	running := jm.GetRunningJobs()
	if len(running) != 1 || running[0].ID != job.ID {
		t.Errorf("Expected one running job, got %d", len(running))
	}

	err = jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_DeleteJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	if !jm.DeleteJob(job.ID) {
		t.Error("DeleteJob should report an existing job")
	}
	if _, exists := jm.GetJob(job.ID); exists {
		t.Error("Job should be gone")
	}
	if jm.DeleteJob(job.ID) {
		t.Error("Second delete should report false")
	}
}

func TestJobState_Terminal(t *testing.T) {
	tests := []struct {
		state JobState
		want  bool
	}{
		{StatePending, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateFailed, true},
		{StateCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(iteration int) {
			defer wg.Done()
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Accepted = iteration
			})
			jm.GetJob(job.ID)
			jm.ListJobs()
		}(i)
	}
	wg.Wait()

	// Should not crash - actual value depends on race
	if _, exists := jm.GetJob(job.ID); !exists {
		t.Error("Job should still exist after concurrent updates")
	}
}
