package engine

// ComponentSummary はコンポーネント一覧の1件分。
type ComponentSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Session string `json:"session"`
}

// DataItemInfo はデータ項目一覧の1件分。
type DataItemInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit,omitempty"`
	Writable bool   `json:"writable,omitempty"`
}

// DataValue はデータ項目読出しの結果。
type DataValue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category"`
	Cached   bool   `json:"cached,omitempty"`
}

// DTCInfo は故障コード読出しの1件分。
type DTCInfo struct {
	Code      string `json:"code"`
	Status    string `json:"status"`
	Confirmed bool   `json:"confirmed"`
	Active    bool   `json:"active"`
}

// FreezeFrame は故障発生時のスナップショットデータ。
type FreezeFrame struct {
	Code string `json:"code"`
	Data string `json:"data"` // 16進表現の生データ
}

// ActuatorResult はアクチュエータ制御の結果。
type ActuatorResult struct {
	ActuatorID string `json:"actuator_id"`
	Action     string `json:"action"`
	Running    bool   `json:"running"`
	AutoStopMs int    `json:"auto_stop_ms,omitempty"`
}

// SessionStatus はセッション操作後のコンポーネント状態。
type SessionStatus struct {
	ComponentID   string `json:"component_id"`
	Session       string `json:"session"`
	SecurityLevel byte   `json:"security_level"`
}

// アクチュエータ制御アクションの定数
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionResults = "results"
)

// DTC操作アクションの定数
const (
	DTCActionRead        = "read"
	DTCActionClear       = "clear"
	DTCActionFreezeFrame = "freeze_frame"
)

// ECUリセット種別の定数
const (
	ResetHard     = "hard"
	ResetKeyOffOn = "key_off_on"
	ResetSoft     = "soft"
)
