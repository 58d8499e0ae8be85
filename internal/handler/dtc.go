package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mnaffeti/sovd-server/internal/engine"
	"github.com/Mnaffeti/sovd-server/pkg/httputil"
)

// dtcRequest は故障コード操作のリクエストボディ。
// status_maskとgroupは10進または0x付き16進の文字列を受け付ける。
type dtcRequest struct {
	Action     string `json:"action" binding:"required"`
	StatusMask string `json:"status_mask"`
	Group      string `json:"group"`
	DTC        string `json:"dtc"`
}

// dtcListResponse は故障コード読出しのレスポンス。
type dtcListResponse struct {
	ComponentID string           `json:"component_id"`
	Count       int              `json:"count"`
	DTCs        []engine.DTCInfo `json:"dtcs"`
}

// dtcClearResponse は故障コード消去のレスポンス。
type dtcClearResponse struct {
	ComponentID string `json:"component_id"`
	Cleared     bool   `json:"cleared"`
}

// HandleDTC はPOST /api/v1/components/:component_id/dtcs のハンドラー。
// actionにより read / clear / freeze_frame に分岐する。
func (h *DiagnosticHandler) HandleDTC(c *gin.Context) {
	traceID, _ := c.Get(TraceIDKey)
	componentID := c.Param("component_id")

	var req dtcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid request body",
			"trace_id", traceID,
			"event_id", "API_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.BadRequest("Request body must include an action field"))
		return
	}

	switch req.Action {
	case engine.DTCActionRead:
		h.handleDTCRead(c, componentID, req.StatusMask)
	case engine.DTCActionClear:
		h.handleDTCClear(c, componentID, req.Group)
	case engine.DTCActionFreezeFrame:
		h.handleFreezeFrame(c, componentID, req.DTC)
	default:
		httputil.WriteError(c, httputil.BadRequest("action must be one of: read, clear, freeze_frame"))
	}
}

func (h *DiagnosticHandler) handleDTCRead(c *gin.Context, componentID, maskStr string) {
	traceID, _ := c.Get(TraceIDKey)

	var mask byte
	if maskStr != "" {
		v, err := strconv.ParseUint(maskStr, 0, 8)
		if err != nil {
			httputil.WriteError(c, httputil.BadRequest("status_mask must be an 8-bit integer"))
			return
		}
		mask = byte(v)
	}

	dtcs, err := h.engine.ReadDTCs(c.Request.Context(), componentID, mask)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("dtc read",
		"trace_id", traceID,
		"event_id", "API_DTC_READ",
		"component", componentID,
		"count", len(dtcs),
	)
	c.JSON(http.StatusOK, dtcListResponse{
		ComponentID: componentID,
		Count:       len(dtcs),
		DTCs:        dtcs,
	})
}

func (h *DiagnosticHandler) handleDTCClear(c *gin.Context, componentID, groupStr string) {
	traceID, _ := c.Get(TraceIDKey)

	var group *uint32
	if groupStr != "" {
		v, err := strconv.ParseUint(groupStr, 0, 32)
		if err != nil || v > 0xFFFFFF {
			httputil.WriteError(c, httputil.BadRequest("group must be a 24-bit integer"))
			return
		}
		g := uint32(v)
		group = &g
	}

	if err := h.engine.ClearDTCs(c.Request.Context(), componentID, group); err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("dtc cleared",
		"trace_id", traceID,
		"event_id", "API_DTC_CLEAR",
		"component", componentID,
	)
	c.JSON(http.StatusOK, dtcClearResponse{ComponentID: componentID, Cleared: true})
}

func (h *DiagnosticHandler) handleFreezeFrame(c *gin.Context, componentID, dtcCode string) {
	if dtcCode == "" {
		httputil.WriteError(c, httputil.BadRequest("freeze_frame requires a dtc field"))
		return
	}

	ff, err := h.engine.ReadFreezeFrame(c.Request.Context(), componentID, dtcCode)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, ff)
}
