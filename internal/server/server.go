package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cwbudde/dotgrid/internal/dots"
	"github.com/cwbudde/dotgrid/internal/encode"
	"github.com/cwbudde/dotgrid/internal/store"
)

// maxPixels bounds the canvas size a single job may request.
const maxPixels = 1 << 26

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	store      store.Store
	addr       string
	server     *http.Server

	// Jobs run under ctx so Shutdown can stop them.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a new HTTP server.
// If patternStore is nil, results are kept in memory only.
func NewServer(addr string, patternStore store.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		jobManager: NewJobManager(),
		store:      patternStore,
		addr:       addr,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register UI routes
	mux.HandleFunc("/", s.handleIndex)

	// Register API routes
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)
	mux.HandleFunc("/api/v1/patterns", s.handleListPatterns)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and waits for running jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server", "running_jobs", len(s.jobManager.GetRunningJobs()))

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// startJob runs the worker for jobID in the background.
func (s *Server) startJob(jobID string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		runJob(s.ctx, s.jobManager, s.store, jobID)
	}()
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	// Parse job ID from path
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	if len(parts) == 1 && r.Method == http.MethodDelete {
		s.handleDeleteJob(w, r, jobID)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Route based on subpath
	sub := ""
	if len(parts) > 1 {
		sub = parts[1]
	}
	switch sub {
	case "", "status":
		s.handleGetJobStatus(w, r, jobID)
	case store.ArtifactPNG:
		s.handleGetImage(w, r, jobID, encode.FormatPNG)
	case store.ArtifactSVG:
		s.handleGetImage(w, r, jobID, encode.FormatSVG)
	case store.ArtifactThumb:
		s.handleGetThumbnail(w, r, jobID)
	case "stream":
		s.handleJobStream(w, r, jobID)
	case "trace":
		s.handleGetTrace(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// validateConfig checks a job request before any work is scheduled.
func validateConfig(config JobConfig) error {
	if err := config.Params().Validate(); err != nil {
		return err
	}
	// Dimensions are positive here; divide to avoid overflowing the product.
	if config.Width > maxPixels/config.Height {
		return fmt.Errorf("canvas %dx%d exceeds %d pixels", config.Width, config.Height, maxPixels)
	}
	if config.Coverage < 0 || config.Coverage >= 1 {
		return fmt.Errorf("coverage must be in [0, 1), got %v", config.Coverage)
	}
	return nil
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if err := validateConfig(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Create job
	job := s.jobManager.CreateJob(config)

	// Start worker in background
	s.startJob(job.ID)

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// statusResponse adds timing to a job snapshot.
type statusResponse struct {
	*Job
	Elapsed float64 `json:"elapsed"`
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	writeJSON(w, http.StatusOK, statusResponse{Job: job, Elapsed: elapsed.Seconds()})
}

// handleDeleteJob handles DELETE /api/v1/jobs/:id
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, inMemory := s.jobManager.GetJob(jobID)
	if inMemory && !job.State.Terminal() {
		http.Error(w, "Job is still running", http.StatusConflict)
		return
	}

	persisted := false
	if s.store != nil {
		err := s.store.DeleteRecord(jobID)
		switch {
		case err == nil:
			persisted = true
		case !errors.Is(err, store.ErrNotFound):
			http.Error(w, fmt.Sprintf("Failed to delete record: %v", err), http.StatusInternalServerError)
			return
		}
	}

	if !inMemory && !persisted {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	s.jobManager.DeleteJob(jobID)
	s.jobManager.broadcaster.CleanupJob(jobID)
	w.WriteHeader(http.StatusNoContent)
}

// resultFor returns the finished pattern for a job, re-rendering a stored
// record when the job is no longer in memory.
func (s *Server) resultFor(jobID string) (*dots.Result, int, error) {
	if job, exists := s.jobManager.GetJob(jobID); exists {
		if res := job.Result(); res != nil {
			return res, http.StatusOK, nil
		}
		if !job.State.Terminal() {
			return nil, http.StatusNotFound, errors.New("no results yet")
		}
	}

	if s.store == nil {
		return nil, http.StatusNotFound, errors.New("job not found")
	}
	record, err := s.store.LoadRecord(jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, http.StatusNotFound, errors.New("job not found")
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	res, err := record.Render()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to render record: %w", err)
	}
	return res, http.StatusOK, nil
}

// handleGetImage handles GET /api/v1/jobs/:id/image.png and image.svg
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request, jobID string, format encode.Format) {
	res, status, err := s.resultFor(jobID)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	contentType := "image/png"
	if format == encode.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")

	if err := encode.Write(w, res, format); err != nil {
		slog.Error("Failed to encode image", "job_id", jobID, "format", format, "error", err)
	}
}

// handleGetThumbnail handles GET /api/v1/jobs/:id/thumb.png
func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request, jobID string) {
	res, status, err := s.resultFor(jobID)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")

	if err := encode.WriteImagePNG(w, encode.Thumbnail(res.Canvas, thumbSize)); err != nil {
		slog.Error("Failed to encode thumbnail", "job_id", jobID, "error", err)
	}
}

// handleGetTrace handles GET /api/v1/jobs/:id/trace
func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request, jobID string) {
	if s.store == nil {
		http.Error(w, "No store configured", http.StatusNotFound)
		return
	}

	entries, err := s.store.LoadTrace(jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Trace not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleListPatterns handles GET /api/v1/patterns
func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos := []store.RecordInfo{}
	if s.store != nil {
		var err error
		infos, err = s.store.ListRecords()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, infos)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
