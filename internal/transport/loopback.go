package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mnaffeti/sovd-server/internal/uds"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// Loopback はプロセス内の模擬ECU群に接続するトランスポート。
// デモモードおよび実車なしでの動作確認に使う。
type Loopback struct {
	mu   sync.Mutex
	ecus map[uint16]*SimulatedECU
}

// NewLoopback は空のループバックトランスポートを返す。
// 未登録アドレスへのOpenは標準挙動の模擬ECUを自動生成する。
func NewLoopback() *Loopback {
	return &Loopback{ecus: make(map[uint16]*SimulatedECU)}
}

// Register はアドレスに模擬ECUを明示的に割り当てる。テスト用。
func (l *Loopback) Register(address uint16, ecu *SimulatedECU) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ecus[address] = ecu
}

// Open はアドレスに対応する模擬ECUへのリンクを返す。
func (l *Loopback) Open(_ context.Context, address uint16) (Link, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ecu, ok := l.ecus[address]
	if !ok {
		ecu = NewSimulatedECU(address)
		l.ecus[address] = ecu
	}
	return &loopbackLink{ecu: ecu}, nil
}

// loopbackLink は模擬ECU1台へのリンク。直前のSendに対する応答をReceiveで返す。
type loopbackLink struct {
	ecu     *SimulatedECU
	pending []byte
	closed  bool
}

func (lk *loopbackLink) Send(ctx context.Context, payload []byte) error {
	if lk.closed {
		return fmt.Errorf("%w: link closed", apperr.ErrLink)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	lk.pending = lk.ecu.Handle(payload)
	return nil
}

func (lk *loopbackLink) Receive(ctx context.Context, _ time.Duration) ([]byte, error) {
	if lk.closed {
		return nil, fmt.Errorf("%w: link closed", apperr.ErrLink)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lk.pending == nil {
		// 応答抑制されたTesterPresent等、応答なしの交換
		return nil, fmt.Errorf("%w: no response pending", apperr.ErrTimeout)
	}
	resp := lk.pending
	lk.pending = nil
	return resp, nil
}

func (lk *loopbackLink) Close() error {
	lk.closed = true
	return nil
}

// SimulatedECU はUDSサーバ挙動を模擬する。対応サービス:
// 0x10/0x11/0x14/0x19/0x22/0x27/0x2E/0x31/0x3E。
type SimulatedECU struct {
	mu       sync.Mutex
	address  uint16
	session  byte
	unlocked map[byte]bool
	seeds    map[byte][]byte
	values   map[uint16][]byte
	dtcs     []uds.DTCRecord
	running  map[uint16]bool
}

// NewSimulatedECU は既定値入りの模擬ECUを返す。
func NewSimulatedECU(address uint16) *SimulatedECU {
	e := &SimulatedECU{
		address:  address,
		session:  uds.SubfunctionDefaultSession,
		unlocked: make(map[byte]bool),
		seeds:    make(map[byte][]byte),
		values:   make(map[uint16][]byte),
		running:  make(map[uint16]bool),
	}
	e.values[uds.DIDVIN] = []byte(fmt.Sprintf("WVWZZZ1JZXW%06d", address))
	e.values[uds.DIDECUSerialNumber] = []byte(fmt.Sprintf("SN%010d", address))
	e.values[uds.DIDManufacturingDate] = []byte{0x20, 0x24, 0x03, 0x15}
	e.values[uds.DIDHardwareVersion] = []byte("HW01.02 ")
	e.values[uds.DIDSoftwareVersion] = []byte("SW04.10 ")
	e.values[uds.DIDSystemSupplierID] = []byte("SUPPLIER01")
	return e
}

// SetValue はDID値を差し替える。テスト用。
func (e *SimulatedECU) SetValue(did uint16, value []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[did] = value
}

// SetDTCs は保持する故障コード一覧を差し替える。テスト用。
func (e *SimulatedECU) SetDTCs(dtcs []uds.DTCRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dtcs = dtcs
}

// Handle はUDSリクエスト1件を処理して応答バイト列を返す。
// 応答抑制されたTesterPresentにはnilを返す。
func (e *SimulatedECU) Handle(req []byte) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(req) == 0 {
		return negative(0x00, uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}

	sid := req[0]
	switch sid {
	case uds.ServiceDiagnosticSessionControl:
		return e.handleSessionControl(req)
	case uds.ServiceECUReset:
		return e.handleECUReset(req)
	case uds.ServiceClearDiagnosticInformation:
		return e.handleClearDTC(req)
	case uds.ServiceReadDTCInformation:
		return e.handleReadDTC(req)
	case uds.ServiceReadDataByIdentifier:
		return e.handleReadData(req)
	case uds.ServiceSecurityAccess:
		return e.handleSecurityAccess(req)
	case uds.ServiceWriteDataByIdentifier:
		return e.handleWriteData(req)
	case uds.ServiceRoutineControl:
		return e.handleRoutineControl(req)
	case uds.ServiceTesterPresent:
		return e.handleTesterPresent(req)
	default:
		return negative(sid, uds.NRCServiceNotSupported)
	}
}

func (e *SimulatedECU) handleSessionControl(req []byte) []byte {
	if len(req) != 2 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	sub := req[1] &^ uds.SuppressPositiveResponseBit
	switch sub {
	case uds.SubfunctionDefaultSession, uds.SubfunctionExtendedSession, uds.SubfunctionProgrammingSession:
	default:
		return negative(req[0], uds.NRCSubFunctionNotSupported)
	}
	e.session = sub
	if sub == uds.SubfunctionDefaultSession {
		e.unlocked = make(map[byte]bool)
	}
	// P2=50ms, P2*=5000ms（10ms単位）のタイミングパラメータを返す
	return positive(req[0], sub, 0x00, 0x32, 0x01, 0xF4)
}

func (e *SimulatedECU) handleECUReset(req []byte) []byte {
	if len(req) != 2 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	e.session = uds.SubfunctionDefaultSession
	e.unlocked = make(map[byte]bool)
	e.running = make(map[uint16]bool)
	return positive(req[0], req[1])
}

func (e *SimulatedECU) handleClearDTC(req []byte) []byte {
	if len(req) != 4 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	// グループ指定に関わらず全消去（模擬動作）。消去済みでも成功。
	e.dtcs = nil
	return positive(req[0])
}

func (e *SimulatedECU) handleReadDTC(req []byte) []byte {
	if len(req) < 2 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	switch req[1] {
	case uds.SubfunctionReportDTCByStatusMask:
		if len(req) != 3 {
			return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
		}
		mask := req[2]
		resp := []byte{req[1], 0xFF}
		for _, d := range e.dtcs {
			if d.Status&mask == 0 && mask != 0xFF {
				continue
			}
			resp = append(resp, byte(d.Code>>16), byte(d.Code>>8), byte(d.Code), d.Status)
		}
		return positive(req[0], resp...)

	case uds.SubfunctionReportDTCSnapshotByDTC:
		if len(req) != 6 {
			return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
		}
		code := uint32(req[2])<<16 | uint32(req[3])<<8 | uint32(req[4])
		for _, d := range e.dtcs {
			if d.Code == code {
				resp := append([]byte{req[1], req[2], req[3], req[4], d.Status}, d.Snapshot...)
				return positive(req[0], resp...)
			}
		}
		return negative(req[0], uds.NRCRequestOutOfRange)

	default:
		return negative(req[0], uds.NRCSubFunctionNotSupported)
	}
}

func (e *SimulatedECU) handleReadData(req []byte) []byte {
	if len(req) != 3 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	did := uint16(req[1])<<8 | uint16(req[2])
	value, ok := e.values[did]
	if !ok {
		return negative(req[0], uds.NRCRequestOutOfRange)
	}
	return positive(req[0], append([]byte{req[1], req[2]}, value...)...)
}

func (e *SimulatedECU) handleSecurityAccess(req []byte) []byte {
	if len(req) < 2 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	sub := req[1]
	if sub%2 == 1 {
		// シード要求。アンロック済みなら全ゼロシードを返す。
		level := (sub + 1) / 2
		if e.unlocked[level] {
			return positive(req[0], sub, 0x00, 0x00, 0x00, 0x00)
		}
		seed := []byte{0x12, 0x34, byte(e.address >> 8), byte(e.address)}
		e.seeds[level] = seed
		return positive(req[0], append([]byte{sub}, seed...)...)
	}

	// 鍵送信。期待鍵はシードの各バイトXOR 0xFF。
	level := sub / 2
	seed, ok := e.seeds[level]
	if !ok {
		return negative(req[0], uds.NRCRequestSequenceError)
	}
	key := req[2:]
	if len(key) != len(seed) {
		return negative(req[0], uds.NRCInvalidKey)
	}
	for i := range seed {
		if key[i] != seed[i]^0xFF {
			return negative(req[0], uds.NRCInvalidKey)
		}
	}
	e.unlocked[level] = true
	delete(e.seeds, level)
	return positive(req[0], sub)
}

func (e *SimulatedECU) handleWriteData(req []byte) []byte {
	if len(req) < 4 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	did := uint16(req[1])<<8 | uint16(req[2])
	if _, ok := e.values[did]; !ok {
		return negative(req[0], uds.NRCRequestOutOfRange)
	}
	e.values[did] = append([]byte(nil), req[3:]...)
	return positive(req[0], req[1], req[2])
}

func (e *SimulatedECU) handleRoutineControl(req []byte) []byte {
	if len(req) < 4 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	rid := uint16(req[2])<<8 | uint16(req[3])
	switch req[1] {
	case uds.SubfunctionStartRoutine:
		e.running[rid] = true
	case uds.SubfunctionStopRoutine:
		if !e.running[rid] {
			return negative(req[0], uds.NRCRequestSequenceError)
		}
		delete(e.running, rid)
	case uds.SubfunctionRequestRoutineResults:
	default:
		return negative(req[0], uds.NRCSubFunctionNotSupported)
	}
	status := byte(0x00)
	if e.running[rid] {
		status = 0x01
	}
	return positive(req[0], req[1], req[2], req[3], status)
}

func (e *SimulatedECU) handleTesterPresent(req []byte) []byte {
	if len(req) != 2 {
		return negative(req[0], uds.NRCIncorrectMessageLengthOrInvalidFormat)
	}
	if req[1]&uds.SuppressPositiveResponseBit != 0 {
		return nil
	}
	return positive(req[0], req[1])
}

func positive(sid byte, data ...byte) []byte {
	return append([]byte{sid + uds.PositiveResponseOffset}, data...)
}

func negative(sid, nrc byte) []byte {
	return []byte{uds.NegativeResponseSID, sid, nrc}
}
