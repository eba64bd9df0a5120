package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/session"
	"github.com/abhisek/fedrill/internal/store"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, errorEnvelope{Error: apiError{Message: msg, Code: code}})
}

// respondErr maps service errors onto HTTP statuses.
func (s *Server) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quizerr.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, session.ErrUnknownQuestion):
		respondError(c, http.StatusNotFound, "unknown_question", err.Error())
	case errors.Is(err, store.ErrDuplicate):
		respondError(c, http.StatusConflict, "session_exists", err.Error())
	default:
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
