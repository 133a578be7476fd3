package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/logger"
	"clinical-agent/internal/memory"
	"clinical-agent/internal/privacy"
)

// Asker is the part of agent.Executor the server needs.
type Asker interface {
	Call(ctx context.Context, input string) (*agent.Result, error)
}

// Server exposes the clinical trials agent and its run history over HTTP.
type Server struct {
	asker    Asker
	store    memory.Store
	redactor *privacy.Redactor
	log      *zap.Logger
}

// New creates a server. A nil store disables the history endpoints; a nil
// redactor sends questions unchanged.
func New(asker Asker, store memory.Store, redactor *privacy.Redactor, log *zap.Logger) *Server {
	return &Server{
		asker:    asker,
		store:    store,
		redactor: redactor,
		log:      logger.OrNop(log).Named("server"),
	}
}

type askRequest struct {
	Question    string `json:"question" binding:"required"`
	ReturnSteps bool   `json:"return_steps"`
}

type askResponse struct {
	RunID      string       `json:"run_id"`
	Answer     string       `json:"answer"`
	Stopped    bool         `json:"stopped"`
	Iterations int          `json:"iterations"`
	DurationMS int64        `json:"duration_ms"`
	Steps      []agent.Step `json:"steps,omitempty"`
}

type runResponse struct {
	ID         string       `json:"id"`
	Question   string       `json:"question"`
	Answer     string       `json:"answer,omitempty"`
	Error      string       `json:"error,omitempty"`
	Stopped    bool         `json:"stopped"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMS int64        `json:"duration_ms"`
	Steps      []agent.Step `json:"steps,omitempty"`
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.accessLog())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/ask", s.handleAsk)
		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
	}
	return engine
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	question, mapping := req.Question, (*privacy.Mapping)(nil)
	if s.redactor != nil {
		question, mapping = s.redactor.Redact(req.Question)
	}

	res, err := s.asker.Call(c.Request.Context(), question)
	if err != nil {
		s.log.Warn("run failed", zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := askResponse{
		RunID:      res.RunID,
		Answer:     mapping.Restore(res.Output),
		Stopped:    res.Stopped,
		Iterations: res.Iterations,
		DurationMS: res.Duration.Milliseconds(),
	}
	if req.ReturnSteps {
		resp.Steps = mapping.RestoreSteps(res.IntermediateSteps)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]runResponse, 0, len(runs))
	for i := range runs {
		r := toRunResponse(&runs[i])
		r.Steps = nil
		out = append(out, r)
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}
	run, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, memory.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run))
}

func toRunResponse(r *memory.Run) runResponse {
	return runResponse{
		ID:         r.ID,
		Question:   r.Query,
		Answer:     r.Answer,
		Error:      r.Error,
		Stopped:    r.Stopped,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Steps:      r.Steps,
	}
}

// statusFor maps run errors onto HTTP statuses.
func statusFor(err error) int {
	var parseErr *agent.OutputParserError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
