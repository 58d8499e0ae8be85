package config

import "time"

// UDS応答タイミング設定（ISO 14229-2のP2/P2*クライアントタイムアウトに相当）
const (
	// P2Timeout は通常応答の待機時間
	P2Timeout = 1 * time.Second
	// P2StarTimeout はResponse Pending（NRC 0x78）受信後の延長待機時間
	P2StarTimeout = 5 * time.Second
	// MaxPendingExtensions はResponse Pendingによる待機延長の上限回数
	MaxPendingExtensions = 5
)

// セッション管理設定
const (
	// S3Window は非デフォルトセッションをデフォルトへ戻す無通信時間
	S3Window = 5 * time.Second
	// TesterPresentInterval はTesterPresent送信間隔
	TesterPresentInterval = 2 * time.Second
)

// トランスポート設定
const (
	LinkOpenTimeout       = 3 * time.Second
	LinkOpenRetries       = 3
	GatewayConnectTimeout = 2 * time.Second
	GatewayRequestTimeout = 10 * time.Second
)

// Circuit Breaker設定
const (
	CBName             = "uds-transport"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// 値キャッシュ設定
const (
	RedisConnectTimeout = 3 * time.Second
	RedisCommandTimeout = 2 * time.Second
	RedisPoolSize       = 10
	// IdentDataTTL は識別系データ項目（VIN等）のキャッシュ保持時間
	IdentDataTTL = 10 * time.Minute
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
