package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/assessment"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// respondError writes the error envelope. The code is the error kind.
func (s *Server) respondError(c *gin.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		s.log.Warn("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"code", body.Code,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func classify(err error) (int, errorBody) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, errorBody{Message: "Assessment not found or expired.", Code: "not_found"}
	case errors.Is(err, assessment.ErrAlreadyGrading):
		return http.StatusConflict, errorBody{Message: apperr.Message(err), Code: string(apperr.KindInvalidInput)}
	}
	kind := apperr.KindOf(err)
	return apperr.HTTPStatus(kind), errorBody{Message: apperr.Message(err), Code: string(kind)}
}

func badRequest(format string, args ...any) error {
	return apperr.Userf(apperr.KindInvalidInput, "request", format, args...)
}
