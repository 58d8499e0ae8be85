package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldTraceID   = "trace_id"
	FieldEventID   = "event_id"
	FieldError     = "error"
	FieldComponent = "component"
	FieldService   = "service_id"
	FieldNRC       = "nrc"
	FieldLatencyMs = "latency_ms"
	FieldSession   = "session"
)

// WithTraceID はトレースIDのslog.Attrを返す。
func WithTraceID(traceID string) slog.Attr {
	return slog.String(FieldTraceID, traceID)
}

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithComponent は対象コンポーネントIDのslog.Attrを返す。
func WithComponent(id string) slog.Attr {
	return slog.String(FieldComponent, id)
}

// WithLatency はレイテンシ（ミリ秒）のslog.Attrを返す。
func WithLatency(ms int64) slog.Attr {
	return slog.Int64(FieldLatencyMs, ms)
}
