package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/feedback"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// processRequest is the body for POST /api/v1/notes.
type processRequest struct {
	Transcript string `json:"transcript" binding:"required"`
	Store      bool   `json:"store"`
}

// handleProcessTranscript runs the pipeline on a transcript. With store=true
// the result is archived and returned with its record metadata.
func (s *Server) handleProcessTranscript(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "transcript is required", err)
		return
	}

	if req.Store {
		record, err := s.pipeline.ProcessAndStore(c.Request.Context(), req.Transcript)
		if err != nil {
			s.writePipelineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
		return
	}

	result, err := s.pipeline.ProcessTranscript(c.Request.Context(), req.Transcript)
	if err != nil {
		s.writePipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleGetNote retrieves an archived note by ID.
func (s *Server) handleGetNote(c *gin.Context) {
	repo := s.pipeline.Repository()
	if repo == nil {
		s.writeError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase, "note archive not configured", nil)
		return
	}

	record, err := repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(c, http.StatusNotFound, domain.ErrCodeInvalidInput, "note not found", nil)
			return
		}
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load note", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleListNotes lists archived notes newest first.
func (s *Server) handleListNotes(c *gin.Context) {
	repo := s.pipeline.Repository()
	if repo == nil {
		s.writeError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase, "note archive not configured", nil)
		return
	}

	limit, offset := pagination(c)
	records, err := repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list notes", err)
		return
	}
	if records == nil {
		records = []*domain.NoteRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"notes":  records,
		"limit":  limit,
		"offset": offset,
	})
}

// handleSaveFeedback stores a clinician correction for a note section.
func (s *Server) handleSaveFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.writeError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase, "feedback store not configured", nil)
		return
	}

	var record feedback.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid feedback payload", err)
		return
	}
	if err := record.Validate(); err != nil {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeValidation, err.Error(), nil)
		return
	}

	if err := s.feedbackStore.Save(c.Request.Context(), &record); err != nil {
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to save feedback", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// handleListFeedback lists feedback entries newest first.
func (s *Server) handleListFeedback(c *gin.Context) {
	if s.feedbackStore == nil {
		s.writeError(c, http.StatusServiceUnavailable, domain.ErrCodeDatabase, "feedback store not configured", nil)
		return
	}

	limit, offset := pagination(c)
	records, err := s.feedbackStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list feedback", err)
		return
	}
	if records == nil {
		records = []*feedback.Record{}
	}
	c.JSON(http.StatusOK, gin.H{
		"feedback": records,
		"limit":    limit,
		"offset":   offset,
	})
}

// writePipelineError maps processing failures onto HTTP statuses:
// collaborator failures to 502, everything else to 500.
func (s *Server) writePipelineError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrCollaborator) {
		s.writeError(c, http.StatusBadGateway, domain.ErrCodeCollaborator, "model server unavailable", err)
		return
	}
	s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer, "transcript processing failed", err)
}

func (s *Server) writeError(c *gin.Context, status int, code, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
		s.logger.WithError(err).WithField("code", code).Warn(message)
	}
	c.JSON(status, domain.NewPipelineError(code, message, details, c.GetString("correlation_id")))
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
