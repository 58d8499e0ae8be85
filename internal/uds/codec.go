package uds

import (
	"encoding/binary"

	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// Request はエンコード前の論理UDSリクエストを表す。
type Request struct {
	Service     byte   // サービスID
	SubFunction *byte  // サブファンクション（該当サービスのみ）
	Data        []byte // パラメータバイト列
}

// Marshal はリクエストをワイヤ形式のバイト列に変換する。
func (r *Request) Marshal() []byte {
	out := make([]byte, 0, 2+len(r.Data))
	out = append(out, r.Service)
	if r.SubFunction != nil {
		out = append(out, *r.SubFunction)
	}
	out = append(out, r.Data...)
	return out
}

// Response はデコード済みのUDS応答を表す。
type Response struct {
	Service  byte   // 元リクエストのサービスID
	Positive bool   // 肯定応答かどうか
	NRC      byte   // 否定応答コード（Positive=falseのとき有効）
	Data     []byte // 応答データ（サービスIDバイトを除く）
}

// Pending は応答がResponse Pendingかどうかを返す。
func (r *Response) Pending() bool {
	return !r.Positive && IsPending(r.NRC)
}

// EcuError は否定応答をapperr.EcuErrorに変換する。肯定応答ではnilを返す。
func (r *Response) EcuError() error {
	if r.Positive {
		return nil
	}
	return apperr.NewEcuError(r.Service, r.NRC, NRCLabel(r.NRC))
}

// Decode はワイヤ形式のバイト列をResponseにデコードする。
// 先頭バイトが0x7Fの場合は否定応答としてNRCを取り出し、
// それ以外は サービスID+0x40 の肯定応答として扱う。
func Decode(raw []byte) (*Response, error) {
	if len(raw) == 0 {
		return nil, apperr.NewDecodeError("empty response", raw)
	}

	if raw[0] == NegativeResponseSID {
		if len(raw) < 3 {
			return nil, apperr.NewDecodeError("negative response shorter than 3 bytes", raw)
		}
		return &Response{
			Service:  raw[1],
			Positive: false,
			NRC:      raw[2],
			Data:     raw[3:],
		}, nil
	}

	if raw[0] < PositiveResponseOffset {
		return nil, apperr.NewDecodeError("response SID below positive offset", raw)
	}
	return &Response{
		Service:  raw[0] - PositiveResponseOffset,
		Positive: true,
		Data:     raw[1:],
	}, nil
}

// subFn はサブファンクション値のポインタを返すヘルパー。
func subFn(b byte) *byte {
	return &b
}

// NewSessionControl はDiagnosticSessionControlリクエストを生成する。
func NewSessionControl(sessionType byte) *Request {
	return &Request{
		Service:     ServiceDiagnosticSessionControl,
		SubFunction: subFn(sessionType),
	}
}

// NewECUReset はECUResetリクエストを生成する。
func NewECUReset(resetType byte) *Request {
	return &Request{
		Service:     ServiceECUReset,
		SubFunction: subFn(resetType),
	}
}

// NewTesterPresent はTesterPresentリクエストを生成する。
// suppressResponse=trueの場合、肯定応答抑制ビットを立てる。
func NewTesterPresent(suppressResponse bool) *Request {
	sub := SubfunctionZeroSubFunction
	if suppressResponse {
		sub |= SuppressPositiveResponseBit
	}
	return &Request{
		Service:     ServiceTesterPresent,
		SubFunction: subFn(sub),
	}
}

// NewReadDataByIdentifier はReadDataByIdentifierリクエストを生成する。
func NewReadDataByIdentifier(did uint16) *Request {
	data := make([]byte, 2)
	binary.BigEndian.PutUint16(data, did)
	return &Request{
		Service: ServiceReadDataByIdentifier,
		Data:    data,
	}
}

// NewWriteDataByIdentifier はWriteDataByIdentifierリクエストを生成する。
func NewWriteDataByIdentifier(did uint16, value []byte) *Request {
	data := make([]byte, 2, 2+len(value))
	binary.BigEndian.PutUint16(data, did)
	data = append(data, value...)
	return &Request{
		Service: ServiceWriteDataByIdentifier,
		Data:    data,
	}
}

// NewReadDTCByStatusMask はReadDTCInformation(reportDTCByStatusMask)リクエストを生成する。
func NewReadDTCByStatusMask(statusMask byte) *Request {
	return &Request{
		Service:     ServiceReadDTCInformation,
		SubFunction: subFn(SubfunctionReportDTCByStatusMask),
		Data:        []byte{statusMask},
	}
}

// NewReadDTCSnapshot はReadDTCInformation(reportDTCSnapshotRecordByDTCNumber)リクエストを生成する。
func NewReadDTCSnapshot(dtc uint32, recordNumber byte) *Request {
	return &Request{
		Service:     ServiceReadDTCInformation,
		SubFunction: subFn(SubfunctionReportDTCSnapshotByDTC),
		Data:        []byte{byte(dtc >> 16), byte(dtc >> 8), byte(dtc), recordNumber},
	}
}

// NewClearDiagnosticInformation はClearDiagnosticInformationリクエストを生成する。
// groupは3バイトのDTCグループ（全消去は GroupAllDTCs）。
func NewClearDiagnosticInformation(group uint32) *Request {
	return &Request{
		Service: ServiceClearDiagnosticInformation,
		Data:    []byte{byte(group >> 16), byte(group >> 8), byte(group)},
	}
}

// NewRoutineControl はRoutineControlリクエストを生成する。
func NewRoutineControl(controlType byte, routineID uint16, params []byte) *Request {
	data := make([]byte, 2, 2+len(params))
	binary.BigEndian.PutUint16(data, routineID)
	data = append(data, params...)
	return &Request{
		Service:     ServiceRoutineControl,
		SubFunction: subFn(controlType),
		Data:        data,
	}
}

// NewSecurityAccessRequestSeed はSecurityAccess(requestSeed)リクエストを生成する。
// レベルlの要求シードサブファンクションは 2l-1（奇数）。
func NewSecurityAccessRequestSeed(level byte) *Request {
	return &Request{
		Service:     ServiceSecurityAccess,
		SubFunction: subFn(level*2 - 1),
	}
}

// NewSecurityAccessSendKey はSecurityAccess(sendKey)リクエストを生成する。
// レベルlの鍵送信サブファンクションは 2l（偶数）。
func NewSecurityAccessSendKey(level byte, key []byte) *Request {
	return &Request{
		Service:     ServiceSecurityAccess,
		SubFunction: subFn(level * 2),
		Data:        key,
	}
}

// ParseReadDataResponse はReadDataByIdentifier肯定応答からDIDエコーを検証し、
// 値バイト列を取り出す。
func ParseReadDataResponse(resp *Response, did uint16) ([]byte, error) {
	if len(resp.Data) < 2 {
		return nil, apperr.NewDecodeError("read data response missing DID echo", resp.Data)
	}
	echo := binary.BigEndian.Uint16(resp.Data[:2])
	if echo != did {
		return nil, apperr.NewDecodeError("read data response DID mismatch", resp.Data)
	}
	return resp.Data[2:], nil
}

// ParseRoutineControlResponse はRoutineControl肯定応答からルーチンIDエコーを検証し、
// ステータスレコードを取り出す。
// 応答レイアウト: [制御種別エコー][ルーチンID 2バイト][ステータスレコード...]。
func ParseRoutineControlResponse(resp *Response, routineID uint16) ([]byte, error) {
	if len(resp.Data) < 3 {
		return nil, apperr.NewDecodeError("routine control response missing routine ID echo", resp.Data)
	}
	echo := binary.BigEndian.Uint16(resp.Data[1:3])
	if echo != routineID {
		return nil, apperr.NewDecodeError("routine control response routine ID mismatch", resp.Data)
	}
	return resp.Data[3:], nil
}

// ParseSecurityAccessSeed はSecurityAccess(requestSeed)肯定応答からシードを取り出す。
// 全ゼロのシードは「既にアンロック済み」を意味し、空スライスを返す。
func ParseSecurityAccessSeed(resp *Response) []byte {
	if len(resp.Data) < 1 {
		return nil
	}
	seed := resp.Data[1:]
	for _, b := range seed {
		if b != 0 {
			return seed
		}
	}
	return []byte{}
}
