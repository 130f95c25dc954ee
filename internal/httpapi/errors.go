package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrDeadlinePassed),
		errors.Is(err, apperr.ErrBidTooLow),
		errors.Is(err, apperr.ErrInvalidPrice),
		errors.Is(err, apperr.ErrAlreadySold),
		errors.Is(err, apperr.ErrAlreadyFavorited):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []apperr.Validation `json:"fields,omitempty"`
}

// fail writes err as {error}. Internal errors are logged and replaced with a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		telemetry.LogWithTrace(c.Request.Context(), s.logger).ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Any("error", err),
		)
		c.AbortWithStatusJSON(code, errorBody{Error: "internal server error"})
		return
	}

	body := errorBody{Error: err.Error()}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	c.AbortWithStatusJSON(code, body)
}

func init() {
	// Report binding failures under the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// badRequest reports a payload that could not be bound. Validator failures
// are listed per field; decoding errors are passed through as text.
func (s *Server) badRequest(c *gin.Context, err error) {
	s.logger.DebugContext(c.Request.Context(), "invalid request payload", slog.Any("error", err))

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "invalid request payload: " + err.Error()})
		return
	}
	body := errorBody{Error: "invalid request payload"}
	for _, fe := range ve {
		reason := "failed " + fe.Tag()
		if fe.Tag() == "required" {
			reason = "is required"
		}
		body.Fields = append(body.Fields, apperr.Validation{Field: fe.Field(), Reason: reason})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}
