package uds

import (
	"fmt"

	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// ISO-TP（ISO 15765-2）フレーム種別。PCI上位4ビットで判別する。
const (
	frameSingle      byte = 0x0
	frameFirst       byte = 0x1
	frameConsecutive byte = 0x2

	// MaxSingleFramePayload はシングルフレームに収まる最大ペイロード長。
	MaxSingleFramePayload = 7
	// consecutivePayload はコンセキュティブフレーム1枚あたりのペイロード長。
	consecutivePayload = 7
)

// Reassembler はセグメント化されたISO-TPフレーム列を1つの論理メッセージに再組立する。
// 生フレームを届けるトランスポート向け。ゴルーチン間で共有しないこと。
type Reassembler struct {
	buf      []byte
	expected int  // ファーストフレームで宣言された全長
	nextSeq  byte // 次に期待するシーケンス番号（0-15巡回）
	active   bool
}

// NewReassembler は初期状態のReassemblerを返す。
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Reset は進行中の再組立を破棄して初期状態に戻す。
func (r *Reassembler) Reset() {
	r.buf = nil
	r.expected = 0
	r.nextSeq = 0
	r.active = false
}

// Feed はフレームを1枚投入する。メッセージが完成したら (payload, true, nil) を返し、
// 続きのフレームを待つ場合は (nil, false, nil) を返す。
// シーケンス順序の乱れや長さ不整合は ErrMalformedResponse 系のエラーになる。
func (r *Reassembler) Feed(frame []byte) ([]byte, bool, error) {
	if len(frame) == 0 {
		return nil, false, apperr.NewDecodeError("empty frame", frame)
	}

	switch frame[0] >> 4 {
	case frameSingle:
		if r.active {
			r.Reset()
			return nil, false, apperr.NewDecodeError("single frame during reassembly", frame)
		}
		length := int(frame[0] & 0x0F)
		if length == 0 || length > MaxSingleFramePayload || len(frame) < 1+length {
			return nil, false, apperr.NewDecodeError("single frame length inconsistent", frame)
		}
		return frame[1 : 1+length], true, nil

	case frameFirst:
		if r.active {
			r.Reset()
			return nil, false, apperr.NewDecodeError("first frame during reassembly", frame)
		}
		if len(frame) < 2 {
			return nil, false, apperr.NewDecodeError("first frame too short", frame)
		}
		total := int(frame[0]&0x0F)<<8 | int(frame[1])
		if total <= MaxSingleFramePayload {
			return nil, false, apperr.NewDecodeError("first frame with single-frame length", frame)
		}
		r.active = true
		r.expected = total
		r.nextSeq = 1
		r.buf = append(make([]byte, 0, total), frame[2:]...)
		if len(r.buf) > total {
			r.buf = r.buf[:total]
		}
		return nil, false, nil

	case frameConsecutive:
		if !r.active {
			return nil, false, apperr.NewDecodeError("consecutive frame without first frame", frame)
		}
		seq := frame[0] & 0x0F
		if seq != r.nextSeq {
			got, want := seq, r.nextSeq
			r.Reset()
			return nil, false, apperr.NewDecodeError(
				fmt.Sprintf("consecutive frame sequence %d, expected %d", got, want), frame)
		}
		r.nextSeq = (r.nextSeq + 1) & 0x0F
		r.buf = append(r.buf, frame[1:]...)
		if len(r.buf) >= r.expected {
			payload := r.buf[:r.expected]
			r.Reset()
			return payload, true, nil
		}
		return nil, false, nil

	default:
		r.Reset()
		return nil, false, apperr.NewDecodeError("unknown frame type", frame)
	}
}

// Segment は論理メッセージをISO-TPフレーム列に分割する。
// 7バイト以下はシングルフレーム1枚、それ以上はファーストフレームと
// コンセキュティブフレーム（シーケンス1始まり、15の次は0）になる。
func Segment(payload []byte) ([][]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", apperr.ErrInvalidRequest)
	}
	if len(payload) > 0x0FFF {
		return nil, fmt.Errorf("%w: payload exceeds 4095 bytes", apperr.ErrInvalidRequest)
	}

	if len(payload) <= MaxSingleFramePayload {
		frame := make([]byte, 0, 1+len(payload))
		frame = append(frame, byte(len(payload)))
		frame = append(frame, payload...)
		return [][]byte{frame}, nil
	}

	total := len(payload)
	first := make([]byte, 0, 8)
	first = append(first, 0x10|byte(total>>8), byte(total))
	first = append(first, payload[:6]...)
	frames := [][]byte{first}

	seq := byte(1)
	for off := 6; off < total; off += consecutivePayload {
		end := off + consecutivePayload
		if end > total {
			end = total
		}
		cf := make([]byte, 0, 8)
		cf = append(cf, 0x20|seq)
		cf = append(cf, payload[off:end]...)
		frames = append(frames, cf)
		seq = (seq + 1) & 0x0F
	}
	return frames, nil
}
