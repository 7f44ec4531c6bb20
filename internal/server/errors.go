package server

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scores.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, scores.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err with its scope and writes the matching error response.
// Server-side failures get a generic message so storage paths and backend
// errors stay in the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, version, level, op string, err error) {
	status := statusFor(err)
	entry := s.requestLogger(r).WithFields(logrus.Fields{
		"version": version,
		"level":   level,
		"op":      op,
	}).WithError(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.metrics.storageErrors.WithLabelValues(op).Inc()
		entry.Error("request failed")
		message = "storage unavailable"
	} else {
		entry.Warn("request rejected")
	}

	writeError(w, status, message)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorBody{Success: false, Error: message})
}
