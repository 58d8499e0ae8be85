package apperr

import "fmt"

// EcuError はECUからの否定応答（Negative Response）を表す。
// NRCとその分類名をそのまま保持し、上位層へ加工せず伝搬する。
type EcuError struct {
	Service  byte   // 要求したUDSサービスID
	NRC      byte   // Negative Response Code
	Category string // NRCの分類名（人間可読）
}

// Error はerrorインターフェースを実装する。
func (e *EcuError) Error() string {
	return fmt.Sprintf("ecu negative response: service=0x%02X, nrc=0x%02X (%s)",
		e.Service, e.NRC, e.Category)
}

// NewEcuError はEcuErrorを生成する。
func NewEcuError(service, nrc byte, category string) *EcuError {
	return &EcuError{
		Service:  service,
		NRC:      nrc,
		Category: category,
	}
}

// LinkError はトランスポート層の操作エラーを表す。
type LinkError struct {
	Component string // 対象コンポーネントID
	Operation string // 操作名（open, send, receive等）
	Cause     error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *LinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link error: component=%s, operation=%s, cause=%v",
			e.Component, e.Operation, e.Cause)
	}
	return fmt.Sprintf("link error: component=%s, operation=%s", e.Component, e.Operation)
}

// Unwrap は根本原因を返す。
func (e *LinkError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrLink
}

// Is はErrLinkとの比較を可能にする。
func (e *LinkError) Is(target error) bool {
	return target == ErrLink
}

// NewLinkError はLinkErrorを生成する。
func NewLinkError(component, operation string, cause error) *LinkError {
	return &LinkError{
		Component: component,
		Operation: operation,
		Cause:     cause,
	}
}

// DecodeError はUDS応答のデコード失敗を表す。
type DecodeError struct {
	Reason string // 失敗理由
	Raw    []byte // 受信した生バイト列
}

// Error はerrorインターフェースを実装する。
func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed uds response: %s (len=%d)", e.Reason, len(e.Raw))
}

// Is はErrMalformedResponseとの比較を可能にする。
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// NewDecodeError はDecodeErrorを生成する。
func NewDecodeError(reason string, raw []byte) *DecodeError {
	return &DecodeError{Reason: reason, Raw: raw}
}
