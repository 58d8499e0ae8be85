package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mnaffeti/sovd-server/internal/engine"
	"github.com/Mnaffeti/sovd-server/pkg/httputil"
)

// componentsResponse はコンポーネント一覧のレスポンス。
type componentsResponse struct {
	Components []engine.ComponentSummary `json:"components"`
}

// dataItemsResponse はデータ項目一覧のレスポンス。
type dataItemsResponse struct {
	ComponentID string                `json:"component_id"`
	Items       []engine.DataItemInfo `json:"items"`
}

// writeDataRequest はデータ項目書込のリクエストボディ。
type writeDataRequest struct {
	Value string `json:"value" binding:"required"`
}

// HandleListComponents はGET /api/v1/components のハンドラー。
func (h *DiagnosticHandler) HandleListComponents(c *gin.Context) {
	comps := h.engine.ListComponents(c.Request.Context())
	c.JSON(http.StatusOK, componentsResponse{Components: comps})
}

// HandleListDataItems はGET /api/v1/components/:component_id/data のハンドラー。
// categoriesクエリでカテゴリを絞り込める（カンマ区切り）。
func (h *DiagnosticHandler) HandleListDataItems(c *gin.Context) {
	componentID := c.Param("component_id")

	var categories []string
	if raw := c.Query("categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				categories = append(categories, cat)
			}
		}
	}

	items, err := h.engine.ListDataItems(c.Request.Context(), componentID, categories)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, dataItemsResponse{ComponentID: componentID, Items: items})
}

// HandleReadData はGET /api/v1/components/:component_id/data/:data_id のハンドラー。
func (h *DiagnosticHandler) HandleReadData(c *gin.Context) {
	traceID, _ := c.Get(TraceIDKey)
	componentID := c.Param("component_id")
	dataID := c.Param("data_id")

	value, err := h.engine.ReadDataItem(c.Request.Context(), componentID, dataID)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("data read",
		"trace_id", traceID,
		"event_id", "API_READ",
		"component", componentID,
		"data_id", dataID,
		"cached", value.Cached,
	)
	c.JSON(http.StatusOK, value)
}

// HandleWriteData はPUT /api/v1/components/:component_id/data/:data_id のハンドラー。
func (h *DiagnosticHandler) HandleWriteData(c *gin.Context) {
	traceID, _ := c.Get(TraceIDKey)
	componentID := c.Param("component_id")
	dataID := c.Param("data_id")

	var req writeDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid request body",
			"trace_id", traceID,
			"event_id", "API_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.BadRequest("Request body must include a value field"))
		return
	}

	value, err := h.engine.WriteDataItem(c.Request.Context(), componentID, dataID, req.Value)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	slog.Info("data written",
		"trace_id", traceID,
		"event_id", "API_WRITE",
		"component", componentID,
		"data_id", dataID,
	)
	c.JSON(http.StatusOK, value)
}
