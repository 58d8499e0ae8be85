package engine

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_engine.go -package=mocks

// Orchestrator はREST層が消費する操作の入口。パラメータは検証・逆直列化済みで渡される。
type Orchestrator interface {
	// ListComponents はカタログ上の全コンポーネントを返す。ECU通信は発生しない。
	ListComponents(ctx context.Context) []ComponentSummary

	// ListDataItems はコンポーネントのデータ項目定義を返す。カタログ参照のみ。
	ListDataItems(ctx context.Context, componentID string, categories []string) ([]DataItemInfo, error)

	// ReadDataItem はデータ項目1件を読み出す。
	ReadDataItem(ctx context.Context, componentID, dataID string) (*DataValue, error)

	// WriteDataItem は書込可能なデータ項目に値を書き込む。
	WriteDataItem(ctx context.Context, componentID, dataID, value string) (*DataValue, error)

	// ReadDTCs は故障コード一覧を読み出す。ゼロ件は正常。
	ReadDTCs(ctx context.Context, componentID string, statusMask byte) ([]DTCInfo, error)

	// ClearDTCs は故障コードを消去する。消去済みECUへの再消去も成功する。
	// groupがnilの場合は全グループを消去する。
	ClearDTCs(ctx context.Context, componentID string, group *uint32) error

	// ReadFreezeFrame は指定DTCのスナップショットデータを読み出す。
	ReadFreezeFrame(ctx context.Context, componentID, dtcCode string) (*FreezeFrame, error)

	// ControlActuator はアクチュエータのルーチンを制御する。
	// durationMsは助言値で、停止ルーチンが定義された場合のみ自動停止に使う。
	ControlActuator(ctx context.Context, componentID, actuatorID, action string, durationMs int) (*ActuatorResult, error)

	// SessionControl は診断セッションを切り替える。
	SessionControl(ctx context.Context, componentID, sessionType string) (*SessionStatus, error)

	// SecurityAccess はシード/鍵ハンドシェイクで解錠レベルを上げる。
	SecurityAccess(ctx context.Context, componentID string, level byte) (*SessionStatus, error)

	// EcuReset はECUをリセットする。成功時セッションはデフォルトに戻る。
	EcuReset(ctx context.Context, componentID, resetType string) (*SessionStatus, error)
}
