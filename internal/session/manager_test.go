package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mnaffeti/sovd-server/internal/transport"
	"github.com/Mnaffeti/sovd-server/internal/uds"
)

// instrumentedLink は同時送信数を計測する計測用リンク。
type instrumentedLink struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	frames   [][]byte
	closed   bool
}

func (l *instrumentedLink) Send(ctx context.Context, payload []byte) error {
	cur := atomic.AddInt32(&l.inFlight, 1)
	for {
		prev := atomic.LoadInt32(&l.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&l.maxSeen, prev, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond) // 交換時間を模擬
	l.mu.Lock()
	l.frames = append(l.frames, append([]byte(nil), payload...))
	l.mu.Unlock()
	atomic.AddInt32(&l.inFlight, -1)
	return nil
}

func (l *instrumentedLink) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	return []byte{0x7E, 0x00}, nil
}

func (l *instrumentedLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *instrumentedLink) sentFrames() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]byte(nil), l.frames...)
}

type instrumentedOpener struct {
	mu    sync.Mutex
	links map[uint16]*instrumentedLink
}

func newInstrumentedOpener() *instrumentedOpener {
	return &instrumentedOpener{links: make(map[uint16]*instrumentedLink)}
}

func (o *instrumentedOpener) Open(ctx context.Context, address uint16) (transport.Link, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	link, ok := o.links[address]
	if !ok {
		link = &instrumentedLink{}
		o.links[address] = link
	}
	return link, nil
}

func (o *instrumentedOpener) link(address uint16) *instrumentedLink {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[address]
}

func TestManager_SingleExchangeInFlight(t *testing.T) {
	opener := newInstrumentedOpener()
	m := NewManager(opener)
	defer m.Close()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot, err := m.Acquire(context.Background(), "engine", 0x7E0)
			if err != nil {
				t.Errorf("Acquire: 予期しないエラー: %v", err)
				return
			}
			defer slot.Release()
			_ = slot.Link().Send(context.Background(), []byte{0x3E, 0x00})
		}()
	}
	wg.Wait()

	link := opener.link(0x7E0)
	if max := atomic.LoadInt32(&link.maxSeen); max > 1 {
		t.Errorf("同時送信数の最大値 = %d, 期待値 = 1", max)
	}
	if got := len(link.sentFrames()); got != workers {
		t.Errorf("送信フレーム数 = %d, 期待値 = %d", got, workers)
	}
}

func TestManager_FIFOOrder(t *testing.T) {
	opener := newInstrumentedOpener()
	m := NewManager(opener)
	defer m.Close()

	first, err := m.Acquire(context.Background(), "engine", 0x7E0)
	if err != nil {
		t.Fatalf("Acquire: 予期しないエラー: %v", err)
	}

	var order []int
	var orderMu sync.Mutex
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			slot, err := m.Acquire(context.Background(), "engine", 0x7E0)
			if err != nil {
				t.Errorf("Acquire: 予期しないエラー: %v", err)
				return
			}
			orderMu.Lock()
			order = append(order, i)
			orderMu.Unlock()
			slot.Release()
		}()
		// 各待機者が確実に列に並んでから次を起動する
		time.Sleep(20 * time.Millisecond)
	}

	first.Release()
	wg.Wait()

	orderMu.Lock()
	defer orderMu.Unlock()
	for i := 1; i <= 3; i++ {
		if order[i-1] != i {
			t.Fatalf("獲得順 = %v, 期待値 = [1 2 3]", order)
		}
	}
}

func TestManager_AcquireCancellation(t *testing.T) {
	opener := newInstrumentedOpener()
	m := NewManager(opener)
	defer m.Close()

	holder, err := m.Acquire(context.Background(), "engine", 0x7E0)
	if err != nil {
		t.Fatalf("Acquire: 予期しないエラー: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := m.Acquire(ctx, "engine", 0x7E0)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("err = %v, 期待値 = context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("キャンセルされた待機者が戻らない")
	}

	// キャンセル済み待機者はスロットを消費しない
	holder.Release()
	slot, err := m.Acquire(context.Background(), "engine", 0x7E0)
	if err != nil {
		t.Fatalf("解放後のAcquire: 予期しないエラー: %v", err)
	}
	slot.Release()
}

func TestManager_SessionTransitionAndSecurityReset(t *testing.T) {
	opener := newInstrumentedOpener()
	m := NewManager(opener)
	defer m.Close()

	slot, err := m.Acquire(context.Background(), "engine", 0x7E0)
	if err != nil {
		t.Fatalf("Acquire: 予期しないエラー: %v", err)
	}

	if err := slot.ApplyTransition(EventEnterExtended); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	slot.SetUnlocked(1)
	if slot.State() != StateExtended || slot.SecurityLevel() != 1 {
		t.Fatalf("状態 = (%s, %d), 期待値 = (EXTENDED, 1)", slot.State(), slot.SecurityLevel())
	}

	// レベルは成功交換でのみ上がり、下位指定では下がらない
	slot.SetUnlocked(0)
	if slot.SecurityLevel() != 1 {
		t.Errorf("SecurityLevel = %d, 期待値 = 1", slot.SecurityLevel())
	}

	// デフォルト復帰でセキュリティレベルも未解錠に戻る
	if err := slot.ApplyTransition(EventEnterDefault); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if slot.State() != StateDefault || slot.SecurityLevel() != 0 {
		t.Errorf("状態 = (%s, %d), 期待値 = (DEFAULT, 0)", slot.State(), slot.SecurityLevel())
	}
	slot.Release()
}

func TestManager_TesterPresentKeepAlive(t *testing.T) {
	opener := newInstrumentedOpener()
	m := NewManager(opener)
	defer m.Close()

	slot, err := m.Acquire(context.Background(), "engine", 0x7E0)
	if err != nil {
		t.Fatalf("Acquire: 予期しないエラー: %v", err)
	}
	if err := slot.ApplyTransition(EventEnterExtended); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	slot.Release()

	// 他操作を発行しない間、キープアライブ間隔内にTesterPresentが観測されること
	deadline := time.Now().Add(3 * time.Second)
	link := opener.link(0x7E0)
	observed := false
	for time.Now().Before(deadline) {
		for _, f := range link.sentFrames() {
			if len(f) == 2 && f[0] == uds.ServiceTesterPresent && f[1] == 0x80 {
				observed = true
			}
		}
		if observed {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !observed {
		t.Fatal("キープアライブ間隔内にTesterPresentが送信されない")
	}

	// デフォルト復帰でキープアライブが停止すること
	slot2, err := m.Acquire(context.Background(), "engine", 0x7E0)
	if err != nil {
		t.Fatalf("Acquire: 予期しないエラー: %v", err)
	}
	if err := slot2.ApplyTransition(EventEnterDefault); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	slot2.Release()

	before := len(link.sentFrames())
	time.Sleep(2*time.Second + 500*time.Millisecond)
	after := len(link.sentFrames())
	if after != before {
		t.Errorf("デフォルト復帰後にフレーム送信が継続している: %d → %d", before, after)
	}
}

func TestManager_StateOfUnknownComponent(t *testing.T) {
	m := NewManager(newInstrumentedOpener())
	defer m.Close()

	state, level := m.StateOf("engine")
	if state != StateDefault || level != 0 {
		t.Errorf("StateOf = (%s, %d), 期待値 = (DEFAULT, 0)", state, level)
	}
}

func TestManager_ClosedRejectsAcquire(t *testing.T) {
	m := NewManager(newInstrumentedOpener())
	m.Close()

	if _, err := m.Acquire(context.Background(), "engine", 0x7E0); err != ErrManagerClosed {
		t.Errorf("err = %v, 期待値 = ErrManagerClosed", err)
	}
}
