// Package transport はECU1台との物理/論理リンクを抽象化するトランスポートポートを提供する。
// コアは特定の物理層を仮定せず、論理メッセージ全体の順序保証つき配送のみを要求する。
package transport

import (
	"context"
	"time"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_transport.go -package=mocks

// Link は開設済みの単一ECUリンク。Send/Receiveは半二重で、
// 呼出し側（セッションマネージャ）が同時実行を直列化する。
type Link interface {
	// Send は論理メッセージ1件を送信する。
	Send(ctx context.Context, payload []byte) error

	// Receive は論理メッセージ1件をtimeout以内で受信する。
	// 期限超過は apperr.ErrTimeout 系のエラーになる。
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Close はリンクを解放する。
	Close() error
}

// Opener はコンポーネントアドレスからLinkを開設するファクトリ。
type Opener interface {
	Open(ctx context.Context, address uint16) (Link, error)
}
