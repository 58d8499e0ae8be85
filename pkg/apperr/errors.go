// Package apperr は共通エラー定義を提供する。
package apperr

import "errors"

// カタログ関連エラー
var (
	// ErrUnknownOperation はカタログに存在しない操作が要求された場合のエラー
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrNotFound は有効な操作だが対象の論理IDが存在しない場合のエラー
	ErrNotFound = errors.New("not found")
	// ErrComponentNotFound はコンポーネントが見つからない場合のエラー
	ErrComponentNotFound = errors.New("component not found")
)

// UDS通信関連エラー
var (
	// ErrTimeout は応答タイムアウト（Response Pending延長の上限超過を含む）のエラー
	ErrTimeout = errors.New("uds response timeout")
	// ErrLink はトランスポート層の通信失敗エラー
	ErrLink = errors.New("transport link error")
	// ErrLinkUnavailable はサーキットブレーカーOpen等でリンクが利用できない場合のエラー
	ErrLinkUnavailable = errors.New("transport link unavailable")
	// ErrMalformedResponse はUDS応答のデコード失敗エラー
	ErrMalformedResponse = errors.New("malformed uds response")
)

// セッション関連エラー
var (
	// ErrSessionConflict はセッション直列化の不変条件違反エラー
	ErrSessionConflict = errors.New("session conflict")
	// ErrInvalidSessionType は不正なセッション種別エラー
	ErrInvalidSessionType = errors.New("invalid session type")
	// ErrSessionClosed はシャットダウン後のセッション利用エラー
	ErrSessionClosed = errors.New("session manager closed")
)

// リクエスト関連エラー
var (
	// ErrInvalidRequest は不正なリクエストエラー
	ErrInvalidRequest = errors.New("invalid request")
	// ErrPolicyDenied はアダプタ側ポリシーによる拒否エラー
	ErrPolicyDenied = errors.New("operation denied by gateway policy")
)
