package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/session"
)

// createQuizRequest falls back to the configured quiz size and mode for
// omitted fields. An empty body is allowed.
type createQuizRequest struct {
	Mode string `json:"mode"`
	Size *int   `json:"size"`
}

func (s *Server) createQuiz(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondErr(c, quizerr.Invalid("body", nil, err.Error()))
		return
	}
	if req.Mode == "" {
		req.Mode = s.quiz.Mode
	}
	size := s.quiz.Size
	if req.Size != nil {
		size = *req.Size
	}
	mode, err := selector.ParseMode(req.Mode)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	quiz, err := s.svc.BuildQuiz(c.Request.Context(), userID(c), size, mode)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (s *Server) recordAnswer(c *gin.Context) {
	var req session.Answer
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondErr(c, quizerr.Invalid("body", nil, err.Error()))
		return
	}
	out, err := s.svc.RecordAnswer(c.Request.Context(), userID(c), req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// finishRequest names a quiz whose answers were posted with its quiz_id.
// The score is computed from those recorded answers.
type finishRequest struct {
	QuizID string `json:"quiz_id"`
	Mode   string `json:"mode"`
}

func (s *Server) finishSession(c *gin.Context) {
	var req finishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondErr(c, quizerr.Invalid("body", nil, err.Error()))
		return
	}
	mode, err := selector.ParseMode(req.Mode)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	res, err := s.svc.Finish(c.Request.Context(), userID(c), req.QuizID, mode)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) dueReviews(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		s.respondErr(c, err)
		return
	}
	items, err := s.svc.DueReviews(c.Request.Context(), userID(c), limit)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context(), userID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) adminAttempts(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		s.respondErr(c, err)
		return
	}
	ov, err := s.svc.Overview(c.Request.Context(), limit)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, quizerr.Invalid(name, raw, "must be a non-negative integer")
	}
	return n, nil
}
