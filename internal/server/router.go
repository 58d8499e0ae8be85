package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Mnaffeti/sovd-server/internal/handler"
)

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *handler.DiagnosticHandler) {
	// ヘルスチェック
	engine.GET("/health", h.HandleHealth)

	// API v1
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/components", h.HandleListComponents)

		comp := v1.Group("/components/:component_id")
		{
			comp.GET("/data", h.HandleListDataItems)
			comp.GET("/data/:data_id", h.HandleReadData)
			comp.PUT("/data/:data_id", h.HandleWriteData)
			comp.POST("/actuators/control", h.HandleActuatorControl)
			comp.POST("/dtcs", h.HandleDTC)
			comp.POST("/services", h.HandleService)
		}
	}
}
