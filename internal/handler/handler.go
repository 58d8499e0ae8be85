// Package handler はHTTPリクエストハンドラーを提供する。
package handler

import (
	"github.com/Mnaffeti/sovd-server/internal/config"
	"github.com/Mnaffeti/sovd-server/internal/engine"
)

// TraceIDKey はコンテキストにTraceIDを格納するキー。
const TraceIDKey = "trace_id"

// DiagnosticHandler は診断APIのハンドラー。
type DiagnosticHandler struct {
	engine engine.Orchestrator
	cfg    *config.Config
}

// NewDiagnosticHandler は新しいDiagnosticHandlerを生成する。
func NewDiagnosticHandler(e engine.Orchestrator, cfg *config.Config) *DiagnosticHandler {
	return &DiagnosticHandler{
		engine: e,
		cfg:    cfg,
	}
}
