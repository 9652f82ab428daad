// Package api exposes the scoring engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/batch"
	"github.com/itsatony/mediabase-sub001/internal/domain"
	"github.com/itsatony/mediabase-sub001/internal/repository"
	"github.com/itsatony/mediabase-sub001/internal/scoring"
)

// maxBatchSubjects bounds one batch request.
const maxBatchSubjects = 1000

// Server represents the HTTP server.
type Server struct {
	config *domain.Config
	engine *scoring.Engine
	runner *batch.Runner
	repo   *repository.ScoreRepository // optional; nil disables persistence
	log    *logrus.Logger
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance. repo may be nil, in which
// case scores are computed but not persisted.
func NewServer(cfg *domain.Config, engine *scoring.Engine, runner *batch.Runner, repo *repository.ScoreRepository, logger *logrus.Logger) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	server := &Server{
		config: cfg,
		engine: engine,
		runner: runner,
		repo:   repo,
		log:    logger,
		router: router,
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server and blocks until the context is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/score", s.handleScore)
		v1.POST("/score/batch", s.handleScoreBatch)
		v1.GET("/scores/:subject", s.handleGetLatestScore)
		v1.GET("/rankings/:use_case", s.handleRankings)
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"timestamp":       time.Now().UTC(),
		"scoring_version": domain.ScoringVersion,
	})
}

// handleScore scores one evidence bundle supplied in the request body.
func (s *Server) handleScore(c *gin.Context) {
	var bundle domain.EvidenceBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evidence bundle: " + err.Error()})
		return
	}
	if bundle.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject is required"})
		return
	}

	record, err := s.engine.ScoreSubject(&bundle)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if s.repo != nil {
		if err := s.repo.Create(c.Request.Context(), record); err != nil {
			s.log.WithError(err).WithField("subject", record.Subject).Error("Failed to persist score record")
		}
	}

	c.JSON(http.StatusOK, record)
}

// batchRequest is the body of a batch scoring request.
type batchRequest struct {
	Subjects []string `json:"subjects" binding:"required"`
}

// batchResponse reports per-subject outcomes of one batch run.
type batchResponse struct {
	Records []*domain.ScoreRecord `json:"records"`
	Errors  map[string]string     `json:"errors,omitempty"`
}

// handleScoreBatch fetches evidence and scores a list of subjects.
func (s *Server) handleScoreBatch(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch scoring is not configured"})
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch request: " + err.Error()})
		return
	}
	if len(req.Subjects) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subjects list is empty"})
		return
	}
	if len(req.Subjects) > maxBatchSubjects {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("batch exceeds %d subjects", maxBatchSubjects),
		})
		return
	}

	result, err := s.runner.Run(c.Request.Context(), req.Subjects)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if s.repo != nil {
		for _, record := range result.Records {
			if err := s.repo.Create(c.Request.Context(), record); err != nil {
				s.log.WithError(err).WithField("subject", record.Subject).Error("Failed to persist score record")
			}
		}
	}

	resp := batchResponse{Records: result.Records}
	if len(result.Errors) > 0 {
		resp.Errors = make(map[string]string, len(result.Errors))
		for subject, subjectErr := range result.Errors {
			resp.Errors[subject] = subjectErr.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetLatestScore returns the newest persisted record for a subject.
func (s *Server) handleGetLatestScore(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "score persistence is not configured"})
		return
	}

	record, err := s.repo.GetLatestBySubject(c.Request.Context(), c.Param("subject"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleRankings returns the top subjects for one use case.
func (s *Server) handleRankings(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "score persistence is not configured"})
		return
	}

	uc, err := domain.ParseUseCase(c.Param("use_case"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	records, err := s.repo.TopSubjects(c.Request.Context(), uc, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"use_case": uc, "records": records})
}

// respondError maps domain errors to HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidUseCase):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
