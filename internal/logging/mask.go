// Package logging はログフィールド生成とマスキングを提供する。
package logging

import "strings"

// MaskVIN はVIN文字列をマスキングする。
// 先頭3文字（WMI）+ マスク文字('*') + 末尾4文字の形式で出力する。
// enabled=falseまたは文字列長が8以下の場合はそのまま返す。
func MaskVIN(vin string, enabled bool) string {
	if !enabled || len(vin) <= 8 {
		return vin
	}
	return vin[:3] + strings.Repeat("*", len(vin)-7) + vin[len(vin)-4:]
}
