package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mnaffeti/sovd-server/internal/handler"
	"github.com/Mnaffeti/sovd-server/pkg/httputil"
)

const traceIDHeader = "X-Trace-ID"

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。
// ヘッダが無い場合は新規に採番する。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set(handler.TraceIDKey, traceID)
		c.Header(traceIDHeader, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		traceID, _ := c.Get(handler.TraceIDKey)

		slog.Info("request completed",
			"trace_id", traceID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"http_status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				traceID, _ := c.Get(handler.TraceIDKey)
				slog.Error("panic recovered",
					"trace_id", traceID,
					"error", err,
				)
				httputil.AbortWithError(c, httputil.NewProblemDetail(
					http.StatusInternalServerError,
					"Internal Server Error",
					"An unexpected error occurred",
				))
			}
		}()
		c.Next()
	}
}
