package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/gdb-api/internal/apiversion"
	"github.com/makkenzo/gdb-api/internal/handler/dto"
	"github.com/makkenzo/gdb-api/internal/ierr"
	"github.com/makkenzo/gdb-api/internal/validation"
	"go.uber.org/zap"
)

const hiddenApplicationMessage = "An unexpected error occurred."

// Exception must be the outermost middleware. It recovers panics and renders the last error
// pushed with c.Error as an error envelope.
func Exception(logger *zap.Logger, exposeMessages bool) gin.HandlerFunc {
	log := logger.Named("ExceptionHandler")
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			log.Error("Panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
				zap.Stack("stack"),
			)
			c.Abort()
			render(c, log, err, exposeMessages)
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		render(c, log, c.Errors.Last().Err, exposeMessages)
	}
}

func render(c *gin.Context, log *zap.Logger, err error, exposeMessages bool) {
	if c.Writer.Written() {
		log.Warn("Response already written, dropping error", zap.Error(err))
		return
	}

	status, code, body := envelope(err, exposeMessages)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.Int("status", status), zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	errorResponsesTotal.WithLabelValues(code).Inc()
	c.AbortWithStatusJSON(status, body)
}

func envelope(err error, exposeMessages bool) (int, string, any) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ierr.CodeValidation, dto.ValidationErrorResponse(verr.Fields)
	}

	switch {
	case errors.Is(err, ierr.ErrValidation):
		fields := validation.FieldErrors{}
		fields.Add(validation.BodyField, err.Error())
		return http.StatusBadRequest, ierr.CodeValidation, dto.ValidationErrorResponse(fields)
	case errors.Is(err, ierr.ErrUnauthorized), errors.Is(err, ierr.ErrInvalidToken),
		errors.Is(err, ierr.ErrTokenInvalidClaims), errors.Is(err, ierr.ErrInvalidCredentials):
		return http.StatusUnauthorized, ierr.CodeUnauthorized, dto.UnauthorizedErrorResponse()
	case errors.Is(err, ierr.ErrForbidden):
		return http.StatusForbidden, ierr.CodeForbidden, dto.NewErrorResponse(ierr.CodeForbidden, dto.MessageForbidden, "")
	case errors.Is(err, ierr.ErrNotFound), errors.Is(err, ierr.ErrUserNotFound):
		return http.StatusNotFound, ierr.CodeNotFound, dto.NewErrorResponse(ierr.CodeNotFound, err.Error(), "")
	case errors.Is(err, ierr.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, ierr.CodeNotFound, dto.NewErrorResponse(ierr.CodeNotFound, err.Error(), "")
	}

	msg := err.Error()
	if !exposeMessages {
		msg = hiddenApplicationMessage
	}
	return http.StatusInternalServerError, ierr.CodeApplication, dto.ApplicationErrorResponse(msg)
}

// NotFound handles unmatched routes. Paths under /api/ carrying an unknown version segment
// are reported as unsupported versions.
func NotFound(versions *apiversion.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if segment, ok := versionSegment(path); ok {
			if _, known := versions.Lookup(segment); !known {
				_ = c.Error(fmt.Errorf("%w: api version '%s' is not supported", ierr.ErrNotFound, strings.TrimPrefix(segment, "v")))
				return
			}
		}
		_ = c.Error(fmt.Errorf("%w: %s %s", ierr.ErrNotFound, c.Request.Method, path))
	}
}

func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("%w: %s %s", ierr.ErrMethodNotAllowed, c.Request.Method, c.Request.URL.Path))
	}
}

func versionSegment(path string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" || !strings.HasPrefix(parts[1], "v") {
		return "", false
	}
	v, err := apiversion.Parse(parts[1])
	if err != nil {
		return "", false
	}
	return v.GroupName(), true
}
