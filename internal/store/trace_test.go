package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/dotgrid/internal/dots"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	tempDir := t.TempDir()
	jobID := "trace-job"

	tw, err := NewTraceWriter(tempDir, jobID)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	want := []dots.SampleProgress{
		{Accepted: 100, Active: 40, Iterations: 120},
		{Accepted: 200, Active: 35, Iterations: 260},
		{Accepted: 231, Iterations: 400, Done: true},
	}
	for _, p := range want {
		if err := tw.Write(p); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := ReadTrace(tempDir, jobID)
	if err != nil {
		t.Fatalf("ReadTrace failed: %v", err)
	}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.SampleProgress != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e.SampleProgress, want[i])
		}
		if e.Timestamp.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}
}

func TestTraceWriter_Truncates(t *testing.T) {
	tempDir := t.TempDir()

	for run := 0; run < 2; run++ {
		tw, err := NewTraceWriter(tempDir, "job")
		if err != nil {
			t.Fatal(err)
		}
		tw.Write(dots.SampleProgress{Accepted: run})
		tw.Close()
	}

	entries, err := ReadTrace(tempDir, "job")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Accepted != 1 {
		t.Errorf("Expected only the second run, got %+v", entries)
	}
}

func TestReadTrace_NotFound(t *testing.T) {
	_, err := ReadTrace(t.TempDir(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTraceWriter_ConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	tw, err := NewTraceWriter(tempDir, "concurrent")
	if err != nil {
		t.Fatal(err)
	}

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := tw.Write(dots.SampleProgress{Accepted: w*perWriter + i}); err != nil {
					t.Errorf("Write failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadTrace(tempDir, "concurrent")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != writers*perWriter {
		t.Errorf("Expected %d entries, got %d", writers*perWriter, len(entries))
	}
}
