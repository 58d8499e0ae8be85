package session

import "errors"

var (
	// ErrInvalidState は許可されない状態遷移のエラー
	ErrInvalidState = errors.New("invalid session state transition")

	// ErrUnknownSessionType は未知のセッション種別のエラー
	ErrUnknownSessionType = errors.New("unknown session type")

	// ErrManagerClosed はシャットダウン後の獲得要求のエラー
	ErrManagerClosed = errors.New("session manager closed")
)
