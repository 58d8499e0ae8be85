// Package uds はUDS（ISO 14229）リクエスト/レスポンスの
// エンコード・デコードを提供する。
package uds

import "fmt"

// UDSサービスID定数
const (
	ServiceDiagnosticSessionControl   byte = 0x10
	ServiceECUReset                   byte = 0x11
	ServiceClearDiagnosticInformation byte = 0x14
	ServiceReadDTCInformation         byte = 0x19
	ServiceReadDataByIdentifier       byte = 0x22
	ServiceSecurityAccess             byte = 0x27
	ServiceWriteDataByIdentifier      byte = 0x2E
	ServiceRoutineControl             byte = 0x31
	ServiceTesterPresent              byte = 0x3E
)

// レスポンス判別用定数
const (
	// PositiveResponseOffset は肯定応答のサービスIDオフセット
	PositiveResponseOffset byte = 0x40
	// NegativeResponseSID は否定応答の先頭バイト
	NegativeResponseSID byte = 0x7F
	// SuppressPositiveResponseBit はサブファンクションの肯定応答抑制ビット
	SuppressPositiveResponseBit byte = 0x80
)

// DiagnosticSessionControlのサブファンクション定数
const (
	SubfunctionDefaultSession     byte = 0x01
	SubfunctionProgrammingSession byte = 0x02
	SubfunctionExtendedSession    byte = 0x03
)

// ECUResetのサブファンクション定数
const (
	SubfunctionHardReset     byte = 0x01
	SubfunctionKeyOffOnReset byte = 0x02
	SubfunctionSoftReset     byte = 0x03
)

// RoutineControlのサブファンクション定数
const (
	SubfunctionStartRoutine          byte = 0x01
	SubfunctionStopRoutine           byte = 0x02
	SubfunctionRequestRoutineResults byte = 0x03
)

// ReadDTCInformationのサブファンクション定数
const (
	SubfunctionReportDTCByStatusMask  byte = 0x02
	SubfunctionReportDTCSnapshotByDTC byte = 0x04
	SubfunctionReportDTCExtDataByDTC  byte = 0x06
)

// TesterPresentのサブファンクション定数
const (
	SubfunctionZeroSubFunction byte = 0x00
)

// ClearDiagnosticInformationのDTCグループ定数
const (
	// GroupAllDTCs は全DTCグループ（0xFFFFFF）
	GroupAllDTCs uint32 = 0xFFFFFF
)

// 共通データ識別子（DID）定数（ISO 14229-1 Annex C準拠）
const (
	DIDVIN               uint16 = 0xF190
	DIDECUSerialNumber   uint16 = 0xF18C
	DIDManufacturingDate uint16 = 0xF18B
	DIDHardwareVersion   uint16 = 0xF191
	DIDSoftwareVersion   uint16 = 0xF194
	DIDSystemSupplierID  uint16 = 0xF18A
)

// serviceNames はサービスIDから名称への対応表
var serviceNames = map[byte]string{
	ServiceDiagnosticSessionControl:   "Diagnostic Session Control",
	ServiceECUReset:                   "ECU Reset",
	ServiceClearDiagnosticInformation: "Clear Diagnostic Information",
	ServiceReadDTCInformation:         "Read DTC Information",
	ServiceReadDataByIdentifier:       "Read Data By Identifier",
	ServiceSecurityAccess:             "Security Access",
	ServiceWriteDataByIdentifier:      "Write Data By Identifier",
	ServiceRoutineControl:             "Routine Control",
	ServiceTesterPresent:              "Tester Present",
}

// ServiceLabel はサービスIDの名称を返す。未知のIDは16進表記で返す。
func ServiceLabel(sid byte) string {
	if name, ok := serviceNames[sid]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", sid)
}
