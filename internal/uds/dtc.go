package uds

import (
	"fmt"
	"strconv"

	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// DTCステータスビット（ISO 14229-1 D.2）。
const (
	DTCStatusTestFailed                 byte = 0x01
	DTCStatusTestFailedThisCycle        byte = 0x02
	DTCStatusPending                    byte = 0x04
	DTCStatusConfirmed                  byte = 0x08
	DTCStatusTestNotCompletedSinceClear byte = 0x10
	DTCStatusTestFailedSinceClear       byte = 0x20
	DTCStatusTestNotCompletedThisCycle  byte = 0x40
	DTCStatusWarningIndicatorRequested  byte = 0x80
)

// DTCRecord はデコード済みの故障コード1件を表す。再読込時に丸ごと置き換え、変更はしない。
type DTCRecord struct {
	Code     uint32 `json:"-"`    // 3バイトDTCコード
	Status   byte   `json:"-"`    // ステータスマスク
	Display  string `json:"code"` // P0123形式の表示コード
	Snapshot []byte `json:"-"`    // スナップショットデータ（取得時のみ）
}

// Confirmed は確定故障ビットが立っているかを返す。
func (d *DTCRecord) Confirmed() bool {
	return d.Status&DTCStatusConfirmed != 0
}

// Active はテスト失敗ビットが立っているかを返す。
func (d *DTCRecord) Active() bool {
	return d.Status&DTCStatusTestFailed != 0
}

// FormatDTC は3バイトDTCコードをSAE J2012表示形式（P0xxx/C/B/U）に変換する。
// 上位2ビットが系統（P/C/B/U）、続く2ビットが最初の数字。
func FormatDTC(code uint32) string {
	systems := [4]byte{'P', 'C', 'B', 'U'}
	first := systems[(code>>22)&0x03]
	return fmt.Sprintf("%c%04X", first, code&0x3FFFFF)
}

// ParseDTCString はP0123形式の表示コードを3バイトDTCコードに変換する。
func ParseDTCString(s string) (uint32, error) {
	if len(s) < 5 || len(s) > 7 {
		return 0, fmt.Errorf("%w: DTC code must be 5-7 characters", apperr.ErrInvalidRequest)
	}
	var system uint32
	switch s[0] {
	case 'P', 'p':
		system = 0
	case 'C', 'c':
		system = 1
	case 'B', 'b':
		system = 2
	case 'U', 'u':
		system = 3
	default:
		return 0, fmt.Errorf("%w: DTC system letter %q", apperr.ErrInvalidRequest, s[0])
	}
	rest, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil || rest > 0x3FFFFF {
		return 0, fmt.Errorf("%w: DTC digits %q", apperr.ErrInvalidRequest, s[1:])
	}
	return system<<22 | uint32(rest), nil
}

// ParseReadDTCByStatusMask はreportDTCByStatusMaskの肯定応答をデコードする。
// 応答レイアウト: [サブファンクションエコー][可用ステータスマスク][DTC 3バイト+ステータス 1バイト]...。
// レコードゼロ件は正常（故障なし）であり、空スライスを返す。
func ParseReadDTCByStatusMask(resp *Response) ([]DTCRecord, error) {
	if len(resp.Data) < 2 {
		return nil, apperr.NewDecodeError("response missing availability mask", resp.Data)
	}
	records := resp.Data[2:]
	if len(records)%4 != 0 {
		return nil, apperr.NewDecodeError("DTC record list not a multiple of 4 bytes", resp.Data)
	}

	out := make([]DTCRecord, 0, len(records)/4)
	for i := 0; i < len(records); i += 4 {
		code := uint32(records[i])<<16 | uint32(records[i+1])<<8 | uint32(records[i+2])
		rec := DTCRecord{
			Code:    code,
			Status:  records[i+3],
			Display: FormatDTC(code),
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseDTCSnapshotResponse はreportDTCSnapshotRecordByDTCNumberの肯定応答をデコードし、
// DTCエコーの後に続くスナップショット生データを返す。
func ParseDTCSnapshotResponse(resp *Response, dtc uint32) ([]byte, error) {
	// レイアウト: [サブファンクションエコー][DTC 3バイト][ステータス][レコード...]
	if len(resp.Data) < 5 {
		return nil, apperr.NewDecodeError("snapshot response too short", resp.Data)
	}
	echo := uint32(resp.Data[1])<<16 | uint32(resp.Data[2])<<8 | uint32(resp.Data[3])
	if echo != dtc {
		return nil, apperr.NewDecodeError("snapshot response DTC mismatch", resp.Data)
	}
	return resp.Data[5:], nil
}
