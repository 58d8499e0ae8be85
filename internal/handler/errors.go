package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Mnaffeti/sovd-server/internal/session"
	"github.com/Mnaffeti/sovd-server/internal/uds"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
	"github.com/Mnaffeti/sovd-server/pkg/httputil"
)

// writeEngineError はオーケストレータのエラーをHTTPステータスに対応付けて書き込む。
func writeEngineError(c *gin.Context, err error) {
	traceID, _ := c.Get(TraceIDKey)

	// ECU否定応答: 502 + NRC詳細
	var ecuErr *apperr.EcuError
	if errors.As(err, &ecuErr) {
		slog.Warn("ecu negative response",
			"trace_id", traceID,
			"event_id", "API_NRC",
			"service", uds.ServiceLabel(ecuErr.Service),
			"nrc", fmt.Sprintf("0x%02X", ecuErr.NRC),
			"category", ecuErr.Category,
		)
		httputil.WriteError(c, httputil.BadGateway(
			fmt.Sprintf("ECU rejected %s: %s", uds.ServiceLabel(ecuErr.Service), uds.NRCLabel(ecuErr.NRC)),
		).WithNRC(fmt.Sprintf("0x%02X", ecuErr.NRC)))
		return
	}

	switch {
	case errors.Is(err, apperr.ErrComponentNotFound),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrUnknownOperation):
		httputil.WriteError(c, httputil.NotFound(err.Error()))

	case errors.Is(err, apperr.ErrInvalidRequest),
		errors.Is(err, apperr.ErrInvalidSessionType):
		httputil.WriteError(c, httputil.BadRequest(err.Error()))

	case errors.Is(err, apperr.ErrPolicyDenied):
		httputil.WriteError(c, httputil.Conflict(err.Error()))

	case errors.Is(err, apperr.ErrTimeout):
		slog.Warn("ecu timeout",
			"trace_id", traceID,
			"event_id", "API_TIMEOUT",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.GatewayTimeout("ECU did not respond in time"))

	case errors.Is(err, apperr.ErrLinkUnavailable),
		errors.Is(err, apperr.ErrSessionClosed),
		errors.Is(err, session.ErrManagerClosed):
		slog.Warn("link unavailable",
			"trace_id", traceID,
			"event_id", "API_UNAVAILABLE",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.ServiceUnavailable("Diagnostic link is unavailable"))

	case errors.Is(err, apperr.ErrLink),
		errors.Is(err, apperr.ErrMalformedResponse):
		slog.Error("link error",
			"trace_id", traceID,
			"event_id", "API_LINK_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.BadGateway("Failed to communicate with ECU"))

	default:
		slog.Error("unexpected error",
			"trace_id", traceID,
			"event_id", "API_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.InternalServerError("An unexpected error occurred"))
	}
}
