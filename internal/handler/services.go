package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mnaffeti/sovd-server/pkg/httputil"
)

// 診断サービス種別の定数
const (
	serviceSessionControl = "session_control"
	serviceSecurityAccess = "security_access"
	serviceEcuReset       = "ecu_reset"
)

// serviceRequest は診断サービス実行のリクエストボディ。
type serviceRequest struct {
	Service       string `json:"service" binding:"required"`
	SessionType   string `json:"session_type"`
	SecurityLevel int    `json:"security_level"`
	ResetType     string `json:"reset_type"`
}

// HandleService はPOST /api/v1/components/:component_id/services のハンドラー。
// serviceにより session_control / security_access / ecu_reset に分岐する。
func (h *DiagnosticHandler) HandleService(c *gin.Context) {
	traceID, _ := c.Get(TraceIDKey)
	componentID := c.Param("component_id")

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid request body",
			"trace_id", traceID,
			"event_id", "API_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.BadRequest("Request body must include a service field"))
		return
	}

	switch req.Service {
	case serviceSessionControl:
		h.handleSessionControl(c, componentID, req.SessionType)
	case serviceSecurityAccess:
		h.handleSecurityAccess(c, componentID, req.SecurityLevel)
	case serviceEcuReset:
		h.handleEcuReset(c, componentID, req.ResetType)
	default:
		httputil.WriteError(c, httputil.BadRequest(
			"service must be one of: session_control, security_access, ecu_reset"))
	}
}

func (h *DiagnosticHandler) handleSessionControl(c *gin.Context, componentID, sessionType string) {
	traceID, _ := c.Get(TraceIDKey)

	if sessionType == "" {
		httputil.WriteError(c, httputil.BadRequest("session_control requires a session_type field"))
		return
	}

	status, err := h.engine.SessionControl(c.Request.Context(), componentID, sessionType)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("session switched",
		"trace_id", traceID,
		"event_id", "API_SESSION",
		"component", componentID,
		"session", status.Session,
	)
	c.JSON(http.StatusOK, status)
}

func (h *DiagnosticHandler) handleSecurityAccess(c *gin.Context, componentID string, level int) {
	traceID, _ := c.Get(TraceIDKey)

	// 奇数サブ機能（シード要求）が0x7E以下に収まる範囲のみ許可
	if level < 1 || level > 0x3F {
		httputil.WriteError(c, httputil.BadRequest("security_level must be between 1 and 63"))
		return
	}

	status, err := h.engine.SecurityAccess(c.Request.Context(), componentID, byte(level))
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("security unlocked",
		"trace_id", traceID,
		"event_id", "API_SECURITY",
		"component", componentID,
		"security_level", status.SecurityLevel,
	)
	c.JSON(http.StatusOK, status)
}

func (h *DiagnosticHandler) handleEcuReset(c *gin.Context, componentID, resetType string) {
	traceID, _ := c.Get(TraceIDKey)

	// reset_type省略時はhardリセット
	status, err := h.engine.EcuReset(c.Request.Context(), componentID, resetType)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("ecu reset",
		"trace_id", traceID,
		"event_id", "API_RESET",
		"component", componentID,
		"reset_type", resetType,
	)
	c.JSON(http.StatusOK, status)
}
