// Package api exposes the HTTP surface: CSV upload handoff, job polling, and
// the product catalog CRUD the import pipeline feeds.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dvhalloran/cartload/internal/config"
	"github.com/dvhalloran/cartload/internal/model"
	"github.com/dvhalloran/cartload/internal/queue"
	"github.com/dvhalloran/cartload/internal/repository"
)

// JobStore is the ledger surface the API needs: create at upload time, read
// for polling.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.UploadJob) error
	GetJob(ctx context.Context, jobID string) (*model.UploadJob, error)
	ListJobs(ctx context.Context) ([]*model.UploadJob, error)
}

// ProductStore is the catalog surface behind the CRUD handlers.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context, page, limit int) ([]*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	SoftDeleteProduct(ctx context.Context, id int64) error
}

// Enqueuer hands staged uploads to the job queue.
type Enqueuer interface {
	EnqueueImport(ctx context.Context, payload queue.ImportPayload) error
}

// Server wires configuration, stores, and the queue producer into HTTP
// handlers. All dependencies are injected; there is no package-level state.
type Server struct {
	cfg      *config.Config
	jobs     JobStore
	products ProductStore
	queue    Enqueuer
	server   *http.Server
}

// New creates a configured server and makes sure the uploads directory
// exists.
func New(cfg *config.Config, jobs JobStore, products ProductStore, enqueuer Enqueuer) (*Server, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Server{
		cfg:      cfg,
		jobs:     jobs,
		products: products,
		queue:    enqueuer,
	}, nil
}

// Handler builds the route tree. Exposed separately from Run so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/product", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Post("/", s.handleCreateProduct)
		r.Post("/upload", s.handleUpload)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Get("/{productID}", s.handleGetProduct)
		r.Put("/{productID}", s.handleUpdateProduct)
		r.Delete("/{productID}", s.handleDeleteProduct)
	})
	return r
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Printf("api listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload stages the file, creates the pending ledger row, enqueues the
// import, and returns immediately. It never waits on processing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded. Please upload a CSV file.")
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		respondError(w, http.StatusBadRequest, "Only CSV files are supported.")
		return
	}

	path, err := s.stageUpload(file)
	if err != nil {
		log.Printf("stage upload: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to store file.")
		return
	}

	jobID := uuid.NewString()
	job := &model.UploadJob{JobID: jobID, FileName: header.Filename}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		log.Printf("create upload job: %v", err)
		removeStaged(path)
		respondError(w, http.StatusInternalServerError, "Failed to create upload job.")
		return
	}
	payload := queue.ImportPayload{
		FilePath: path,
		FileName: header.Filename,
		JobID:    jobID,
	}
	if err := s.queue.EnqueueImport(ctx, payload); err != nil {
		log.Printf("enqueue import: %v", err)
		removeStaged(path)
		respondError(w, http.StatusInternalServerError, "Failed to queue job.")
		return
	}

	respondJSON(w, http.StatusAccepted, envelope{
		Success: true,
		Message: "File uploaded successfully. Processing has started.",
		Data: map[string]string{
			"jobId":      jobID,
			"trackingId": jobID,
			"fileName":   header.Filename,
		},
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Job not found.")
		return
	}
	if err != nil {
		log.Printf("get job %s: %v", jobID, err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: job})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.ListJobs(r.Context())
	if err != nil {
		log.Printf("list jobs: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if jobs == nil {
		jobs = []*model.UploadJob{}
	}
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: jobs})
}

// stageUpload copies the multipart file into the uploads directory under an
// opaque name. The claiming worker owns and removes the file afterwards.
func (s *Server) stageUpload(file multipart.File) (string, error) {
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+".csv")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		removeStaged(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	return path, nil
}

func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove staged file %s: %v", path, err)
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Message: message})
}
