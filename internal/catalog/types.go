// Package catalog は論理的な(コンポーネント, 操作)ペアをUDSサービス定義に
// 対応付ける静的なサービスカタログを提供する。振る舞いは持たず純粋な参照のみ。
package catalog

import "github.com/Mnaffeti/sovd-server/internal/uds"

// OperationKind はカタログで解決できる操作種別。
type OperationKind string

const (
	OpReadData        OperationKind = "read_data"
	OpWriteData       OperationKind = "write_data"
	OpReadDTC         OperationKind = "read_dtc"
	OpClearDTC        OperationKind = "clear_dtc"
	OpControlActuator OperationKind = "control_actuator"
	OpSessionControl  OperationKind = "session_control"
	OpSecurityAccess  OperationKind = "security_access"
	OpEcuReset        OperationKind = "ecu_reset"
)

// DataCategory はデータ項目の分類。identDataはキャッシュ可能、currentDataは都度読出。
type DataCategory string

const (
	CategoryIdentData   DataCategory = "identData"
	CategoryCurrentData DataCategory = "currentData"
)

// Component は呼出し側に公開する論理ECU1台分の定義。起動時に構築され以後不変。
type Component struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address uint16 `json:"address"` // 車載ネットワーク上の論理アドレス
}

// DataItem はデータ項目の定義。人間可読IDとDID、値コーデックの対応を持つ。
type DataItem struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	DID      uint16         `json:"did"`
	Category DataCategory   `json:"category"`
	Codec    uds.ValueCodec `json:"codec"`
	Writable bool           `json:"writable,omitempty"`
}

// Actuator はアクチュエータ定義。RoutineControlのルーチンIDに対応付ける。
// StopRoutineIDが非ゼロの場合、durationつき制御で自動停止に使う。
type Actuator struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	RoutineID     uint16 `json:"routine_id"`
	StopRoutineID uint16 `json:"stop_routine_id,omitempty"`
}

// ServiceBinding はResolveの結果。1回のUDS交換に必要な定義一式。
type ServiceBinding struct {
	Component *Component
	Kind      OperationKind
	ServiceID byte
	DataItem  *DataItem // OpReadData / OpWriteData のみ
	Actuator  *Actuator // OpControlActuator のみ
}

// componentEntry はカタログ内部のコンポーネント1台分の束。
type componentEntry struct {
	Component Component            `json:"component"`
	DataItems map[string]*DataItem `json:"-"`
	Actuators map[string]*Actuator `json:"-"`
}
