package logging

import "testing"

// TestMaskVIN はVINマスキングの形式を検証する
func TestMaskVIN(t *testing.T) {
	tests := []struct {
		name    string
		vin     string
		enabled bool
		want    string
	}{
		{"標準17桁VIN", "WVWZZZ1JZXW000001", true, "WVW**********0001"},
		{"マスク無効", "WVWZZZ1JZXW000001", false, "WVWZZZ1JZXW000001"},
		{"短い文字列はそのまま", "SHORT", true, "SHORT"},
		{"8文字はそのまま", "ABCDEFGH", true, "ABCDEFGH"},
		{"空文字列", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskVIN(tt.vin, tt.enabled); got != tt.want {
				t.Errorf("MaskVIN(%q) = %q, 期待値 = %q", tt.vin, got, tt.want)
			}
		})
	}
}

// TestMaskVIN_Length はマスク後も文字列長が変わらないことを検証する
func TestMaskVIN_Length(t *testing.T) {
	vin := "JH4KA7561PC008269"
	if got := MaskVIN(vin, true); len(got) != len(vin) {
		t.Errorf("マスク後の長さ = %d, 期待値 = %d", len(got), len(vin))
	}
}
