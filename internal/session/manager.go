package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Mnaffeti/sovd-server/internal/config"
	"github.com/Mnaffeti/sovd-server/internal/transport"
	"github.com/Mnaffeti/sovd-server/internal/uds"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// Manager はECU毎のセッションレジストリ。起動時に生成しシャットダウンで破棄する。
// コンポーネントへの同時要求はFIFOで直列化する（プロトコルは半二重でパイプライン不可）。
type Manager struct {
	mu       sync.Mutex
	opener   transport.Opener
	sessions map[string]*ecuSession
	closed   bool
}

// NewManager は新しいセッションマネージャを生成する。
func NewManager(opener transport.Opener) *Manager {
	return &Manager{
		opener:   opener,
		sessions: make(map[string]*ecuSession),
	}
}

// Acquire はコンポーネントのセッションスロットを獲得する。
// 先着順で待機し、ctxのキャンセルで待機列から外れる。
// 返されたSlotは必ずReleaseすること。
func (m *Manager) Acquire(ctx context.Context, componentID string, address uint16) (*Slot, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	es, ok := m.sessions[componentID]
	if !ok {
		es = &ecuSession{
			componentID: componentID,
			address:     address,
			state:       StateDefault,
			opener:      m.opener,
		}
		m.sessions[componentID] = es
	}
	m.mu.Unlock()

	if err := es.acquire(ctx); err != nil {
		return nil, err
	}

	if err := es.ensureLink(ctx); err != nil {
		es.release(false)
		return nil, err
	}
	return &Slot{es: es}, nil
}

// StateOf はコンポーネントの現在のセッション状態とセキュリティレベルを返す。
// 未接触のコンポーネントはデフォルト・未解錠。
func (m *Manager) StateOf(componentID string) (State, byte) {
	m.mu.Lock()
	es, ok := m.sessions[componentID]
	m.mu.Unlock()
	if !ok {
		return StateDefault, 0
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.state, es.securityLevel
}

// Close は全セッションを破棄する。キープアライブを止め、リンクを閉じる。
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*ecuSession, 0, len(m.sessions))
	for _, es := range m.sessions {
		sessions = append(sessions, es)
	}
	m.mu.Unlock()

	for _, es := range sessions {
		es.shutdown()
	}
}

// ecuSession はECU1台分のセッション状態とリンクを保持する。
type ecuSession struct {
	mu          sync.Mutex
	componentID string
	address     uint16
	opener      transport.Opener
	link        transport.Link

	state         State
	securityLevel byte

	busy  bool
	queue []*waiter

	s3Timer  *time.Timer
	tpCancel context.CancelFunc
}

type waiter struct {
	ready    chan struct{}
	canceled bool
}

// acquire はスロットを先着順で獲得する。キャンセルされた待機者は列に残っても
// releaseが読み飛ばす。
func (es *ecuSession) acquire(ctx context.Context) error {
	es.mu.Lock()
	if !es.busy && len(es.queue) == 0 {
		es.busy = true
		es.stopS3Locked()
		es.mu.Unlock()
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	es.queue = append(es.queue, w)
	es.mu.Unlock()

	select {
	case <-w.ready:
		es.mu.Lock()
		es.stopS3Locked()
		es.mu.Unlock()
		return nil
	case <-ctx.Done():
		es.mu.Lock()
		w.canceled = true
		es.mu.Unlock()
		// キャンセルとreleaseの競合: 既に起床済みならスロットを次に渡す
		select {
		case <-w.ready:
			es.release(false)
		default:
		}
		return ctx.Err()
	}
}

// tryAcquire は空いている場合のみスロットを獲得する。キープアライブ用。
func (es *ecuSession) tryAcquire() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.busy || len(es.queue) > 0 {
		return false
	}
	es.busy = true
	return true
}

// release はスロットを解放し、待機列の先頭を起こす。
// callerActivityがtrueの場合はS3無通信タイマーを仕切り直す。
func (es *ecuSession) release(callerActivity bool) {
	es.mu.Lock()
	defer es.mu.Unlock()

	for len(es.queue) > 0 {
		w := es.queue[0]
		es.queue = es.queue[1:]
		if w.canceled {
			continue
		}
		close(w.ready)
		return
	}

	es.busy = false
	if callerActivity && es.state != StateDefault {
		es.armS3Locked()
	}
}

// ensureLink はリンクを遅延開設する。スロット保持中にのみ呼ぶこと。
func (es *ecuSession) ensureLink(ctx context.Context) error {
	es.mu.Lock()
	link := es.link
	es.mu.Unlock()
	if link != nil {
		return nil
	}

	opened, err := es.opener.Open(ctx, es.address)
	if err != nil {
		return apperr.NewLinkError(es.componentID, "open", err)
	}
	es.mu.Lock()
	es.link = opened
	es.mu.Unlock()
	return nil
}

// applyTransition は状態遷移を適用し、キープアライブとセキュリティレベルを整合させる。
func (es *ecuSession) applyTransition(event StateEvent) error {
	es.mu.Lock()
	prev := es.state
	next, err := ValidateTransition(prev, event)
	if err != nil {
		es.mu.Unlock()
		return fmt.Errorf("%w: %s + %s", apperr.ErrSessionConflict, prev, event)
	}
	es.state = next

	// デフォルト復帰でセキュリティレベルは必ず未解錠に戻る
	if next == StateDefault {
		es.securityLevel = 0
	}

	startTP := prev == StateDefault && next != StateDefault
	stopTP := next == StateDefault && es.tpCancel != nil
	var cancel context.CancelFunc
	if stopTP {
		cancel = es.tpCancel
		es.tpCancel = nil
	}
	if next == StateDefault {
		es.stopS3Locked()
	}
	es.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if startTP {
		es.startKeepAlive()
	}

	if prev != next {
		slog.Info("session state changed",
			"event_id", "SESSION_STATE",
			"component", es.componentID,
			"from", string(prev),
			"to", string(next),
		)
	}
	return nil
}

// startKeepAlive は非デフォルトセッション維持用のTesterPresent送信ループを起動する。
func (es *ecuSession) startKeepAlive() {
	ctx, cancel := context.WithCancel(context.Background())
	es.mu.Lock()
	if es.tpCancel != nil {
		// 既に稼働中
		es.mu.Unlock()
		cancel()
		return
	}
	es.tpCancel = cancel
	es.mu.Unlock()

	go es.keepAliveLoop(ctx)
}

func (es *ecuSession) keepAliveLoop(ctx context.Context) {
	ticker := time.NewTicker(config.TesterPresentInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 交換が進行中ならその通信自体がECU側S3を更新するため送信不要
			if !es.tryAcquire() {
				continue
			}
			es.mu.Lock()
			link := es.link
			es.mu.Unlock()
			if link != nil {
				frame := uds.NewTesterPresent(true).Marshal()
				if err := link.Send(ctx, frame); err != nil {
					slog.Warn("tester present send failed",
						"event_id", "TESTER_PRESENT_ERR",
						"component", es.componentID,
						"error", err.Error(),
					)
				}
			}
			es.release(false)
		}
	}
}

// armS3Locked はS3無通信タイマーを仕切り直す。es.muを保持して呼ぶこと。
func (es *ecuSession) armS3Locked() {
	if es.s3Timer != nil {
		es.s3Timer.Stop()
	}
	es.s3Timer = time.AfterFunc(config.S3Window, es.onS3Timeout)
}

// stopS3Locked はS3タイマーを止める。es.muを保持して呼ぶこと。
func (es *ecuSession) stopS3Locked() {
	if es.s3Timer != nil {
		es.s3Timer.Stop()
		es.s3Timer = nil
	}
}

// onS3Timeout は呼出し側の無通信によるデフォルト復帰。
// ECU側も自身のS3タイマーで同様に復帰するため通信は発生させない。
func (es *ecuSession) onS3Timeout() {
	slog.Info("session s3 timeout",
		"event_id", "SESSION_S3_TIMEOUT",
		"component", es.componentID,
	)
	if err := es.applyTransition(EventS3Timeout); err != nil {
		slog.Warn("s3 revert failed",
			"event_id", "SESSION_S3_ERR",
			"component", es.componentID,
			"error", err.Error(),
		)
	}
}

func (es *ecuSession) shutdown() {
	es.mu.Lock()
	cancel := es.tpCancel
	es.tpCancel = nil
	link := es.link
	es.link = nil
	es.stopS3Locked()
	es.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if link != nil {
		if err := link.Close(); err != nil {
			slog.Warn("link close failed",
				"event_id", "LINK_CLOSE_ERR",
				"component", es.componentID,
				"error", err.Error(),
			)
		}
	}
}

// Slot は獲得済みのセッションスロット。保持中は対象ECUへの交換を独占する。
type Slot struct {
	es       *ecuSession
	released bool
}

// Link は開設済みのトランスポートリンクを返す。
func (s *Slot) Link() transport.Link {
	s.es.mu.Lock()
	defer s.es.mu.Unlock()
	return s.es.link
}

// State は現在のセッション状態を返す。
func (s *Slot) State() State {
	s.es.mu.Lock()
	defer s.es.mu.Unlock()
	return s.es.state
}

// SecurityLevel は現在の解錠レベルを返す。0は未解錠。
func (s *Slot) SecurityLevel() byte {
	s.es.mu.Lock()
	defer s.es.mu.Unlock()
	return s.es.securityLevel
}

// ApplyTransition は成功したUDS交換の結果をセッション状態に反映する。
func (s *Slot) ApplyTransition(event StateEvent) error {
	return s.es.applyTransition(event)
}

// SetUnlocked はSecurityAccess成功時の解錠レベルを記録する。
// レベルは成功した交換によってのみ上がる。
func (s *Slot) SetUnlocked(level byte) {
	s.es.mu.Lock()
	defer s.es.mu.Unlock()
	if level > s.es.securityLevel {
		s.es.securityLevel = level
	}
}

// DropLink は回復不能なリンク障害時にリンクを破棄する。次回獲得時に再開設される。
func (s *Slot) DropLink() {
	s.es.mu.Lock()
	link := s.es.link
	s.es.link = nil
	s.es.mu.Unlock()
	if link != nil {
		_ = link.Close()
	}
}

// Release はスロットを解放する。二重解放は無害。
func (s *Slot) Release() {
	if s.released {
		return
	}
	s.released = true
	s.es.release(true)
}
