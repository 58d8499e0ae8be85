package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.bug.st/serial"

	"github.com/Mnaffeti/sovd-server/internal/config"
	"github.com/Mnaffeti/sovd-server/internal/uds"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// SerialBridge はシリアル接続のISO-TPブリッジ機器経由でECUと通信するトランスポート。
// ブリッジは生のISO-TPフレームを届けるだけで、再組立はこちら側で行う。
//
// ワイヤ形式: 1レコード = アドレス2バイト（ビッグエンディアン） + ISO-TPフレーム8バイト
// （8バイト未満のフレームは0x00で後詰め）。
type SerialBridge struct {
	mu   sync.Mutex
	port serial.Port
}

const bridgeRecordSize = 10

// NewSerialBridge はシリアルポートを開いてブリッジトランスポートを生成する。
// 機器の列挙遅延に備えて有限回リトライする。
func NewSerialBridge(cfg *config.Config) (*SerialBridge, error) {
	mode := &serial.Mode{
		BaudRate: cfg.SerialBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	var port serial.Port
	err := retry.Do(
		func() error {
			p, err := serial.Open(cfg.SerialPort, mode)
			if err != nil {
				return err
			}
			port = p
			return nil
		},
		retry.Attempts(uint(config.LinkOpenRetries)),
		retry.Delay(config.LinkOpenTimeout/time.Duration(config.LinkOpenRetries)),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("serial port open retry",
				"event_id", "SERIAL_OPEN_RETRY",
				"attempt", n+1,
				"port", cfg.SerialPort,
				"error", err.Error(),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.SerialPort, err)
	}

	slog.Info("serial bridge connected",
		"event_id", "SERIAL_OPEN",
		"port", cfg.SerialPort,
		"baud_rate", cfg.SerialBaudRate,
	)
	return &SerialBridge{port: port}, nil
}

// Open はアドレス指定のブリッジリンクを返す。物理ポートは全リンクで共有する。
func (b *SerialBridge) Open(_ context.Context, address uint16) (Link, error) {
	return &serialLink{bridge: b, address: address, reasm: uds.NewReassembler()}, nil
}

// Close は共有シリアルポートを閉じる。
func (b *SerialBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}

type serialLink struct {
	bridge  *SerialBridge
	address uint16
	reasm   *uds.Reassembler
}

func (lk *serialLink) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	frames, err := uds.Segment(payload)
	if err != nil {
		return err
	}

	lk.bridge.mu.Lock()
	defer lk.bridge.mu.Unlock()

	for _, frame := range frames {
		record := make([]byte, bridgeRecordSize)
		binary.BigEndian.PutUint16(record[:2], lk.address)
		copy(record[2:], frame)
		if _, err := lk.bridge.port.Write(record); err != nil {
			return apperr.NewLinkError(fmt.Sprintf("0x%04X", lk.address), "send", err)
		}
	}
	return nil
}

func (lk *serialLink) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	lk.bridge.mu.Lock()
	defer lk.bridge.mu.Unlock()

	deadline := time.Now().Add(timeout)
	lk.reasm.Reset()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: no response within %s", apperr.ErrTimeout, timeout)
		}

		record, err := lk.readRecord(remaining)
		if err != nil {
			return nil, err
		}
		if record == nil {
			// 読出しタイムアウト。期限まで再試行する。
			continue
		}

		addr := binary.BigEndian.Uint16(record[:2])
		if addr != lk.address {
			// 他コンポーネント宛のフレームは読み捨てる
			continue
		}

		payload, done, err := lk.reasm.Feed(trimFrame(record[2:]))
		if err != nil {
			return nil, err
		}
		if done {
			return payload, nil
		}
	}
}

// readRecord は1レコードを読む。期限内にデータが来なければ(nil, nil)を返す。
func (lk *serialLink) readRecord(timeout time.Duration) ([]byte, error) {
	if err := lk.bridge.port.SetReadTimeout(timeout); err != nil {
		return nil, apperr.NewLinkError(fmt.Sprintf("0x%04X", lk.address), "receive", err)
	}

	record := make([]byte, bridgeRecordSize)
	read := 0
	for read < bridgeRecordSize {
		n, err := lk.bridge.port.Read(record[read:])
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("%w: serial port closed", apperr.ErrLink)
			}
			return nil, apperr.NewLinkError(fmt.Sprintf("0x%04X", lk.address), "receive", err)
		}
		if n == 0 {
			if read == 0 {
				return nil, nil
			}
			return nil, apperr.NewDecodeError("truncated bridge record", record[:read])
		}
		read += n
	}
	return record, nil
}

// trimFrame はパディングされた8バイトフレームからPCI宣言分の実データを切り出す。
func trimFrame(frame []byte) []byte {
	if len(frame) == 0 {
		return frame
	}
	switch frame[0] >> 4 {
	case 0x0:
		length := int(frame[0] & 0x0F)
		if 1+length <= len(frame) {
			return frame[:1+length]
		}
	case 0x1, 0x2:
		return frame
	}
	return frame
}

func (lk *serialLink) Close() error {
	return nil
}
