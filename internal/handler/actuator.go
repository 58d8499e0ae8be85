package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mnaffeti/sovd-server/internal/engine"
	"github.com/Mnaffeti/sovd-server/pkg/httputil"
)

// actuatorControlRequest はアクチュエータ制御のリクエストボディ。
type actuatorControlRequest struct {
	ActuatorID string `json:"actuator_id" binding:"required"`
	Action     string `json:"action" binding:"required"`
	DurationMs int    `json:"duration_ms"`
}

// HandleActuatorControl はPOST /api/v1/components/:component_id/actuators/control のハンドラー。
func (h *DiagnosticHandler) HandleActuatorControl(c *gin.Context) {
	traceID, _ := c.Get(TraceIDKey)
	componentID := c.Param("component_id")

	// 1. リクエストバインド
	var req actuatorControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid request body",
			"trace_id", traceID,
			"event_id", "API_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.BadRequest("Request body must include actuator_id and action"))
		return
	}

	// 2. アクション検証
	switch req.Action {
	case engine.ActionStart, engine.ActionStop, engine.ActionResults:
	default:
		httputil.WriteError(c, httputil.BadRequest("action must be one of: start, stop, results"))
		return
	}
	if req.DurationMs < 0 {
		httputil.WriteError(c, httputil.BadRequest("duration_ms must not be negative"))
		return
	}

	// 3. 制御実行
	result, err := h.engine.ControlActuator(c.Request.Context(), componentID, req.ActuatorID, req.Action, req.DurationMs)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("actuator controlled",
		"trace_id", traceID,
		"event_id", "API_ACTUATOR",
		"component", componentID,
		"actuator_id", req.ActuatorID,
		"action", req.Action,
		"running", result.Running,
	)
	c.JSON(http.StatusOK, result)
}
