package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

// tracing opens a server span per request, continuing any propagated trace.
func tracing(tp trace.TracerProvider) gin.HandlerFunc {
	tracer := tp.Tracer("github.com/Rijon63/fothebys-auction-system/internal/httpapi")
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// requestLogger logs method, path, status and latency of each request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		telemetry.LogWithTrace(ctx, logger).InfoContext(ctx, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing authorization header: %w", apperr.ErrUnauthenticated)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("malformed authorization header: %w", apperr.ErrUnauthenticated)
	}
	return strings.TrimSpace(token), nil
}

// authenticate attaches the verified caller identity to the request context.
func authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			unauthorized(c, err)
			return
		}
		id, err := v.Verify(raw)
		if err != nil {
			unauthorized(c, err)
			return
		}

		ctx := auth.WithIdentity(c.Request.Context(), id)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("enduser.id", id.UserID),
			attribute.String("enduser.role", string(id.Role)),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func unauthorized(c *gin.Context, err error) {
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		err = fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: err.Error()})
}

// identity returns the caller attached by authenticate.
func identity(c *gin.Context) auth.Identity {
	id, _ := auth.FromContext(c.Request.Context())
	return id
}
