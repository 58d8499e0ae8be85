package uds

import (
	"bytes"
	"testing"
)

func TestValueCodec_DecodeValue(t *testing.T) {
	tests := []struct {
		name    string
		codec   ValueCodec
		raw     []byte
		want    string
		wantErr bool
	}{
		{
			name:  "ASCII（VIN 17文字）",
			codec: ValueCodec{Kind: CodecASCII, Length: 17},
			raw:   []byte("WVWZZZ1JZXW000001"),
			want:  "WVWZZZ1JZXW000001",
		},
		{
			name:  "ASCII（末尾NUL埋めを除去）",
			codec: ValueCodec{Kind: CodecASCII, Length: 8},
			raw:   []byte{'A', 'B', 'C', 0, 0, 0, 0, 0},
			want:  "ABC",
		},
		{
			name:  "固定幅整数（2バイト）",
			codec: ValueCodec{Kind: CodecFixedUint, Length: 2},
			raw:   []byte{0x03, 0xE8},
			want:  "1000",
		},
		{
			name:  "BCD（製造日）",
			codec: ValueCodec{Kind: CodecBCD, Length: 4},
			raw:   []byte{0x20, 0x24, 0x03, 0x15},
			want:  "20240315",
		},
		{
			name:    "BCD（不正な桁）",
			codec:   ValueCodec{Kind: CodecBCD, Length: 1},
			raw:     []byte{0x3A},
			wantErr: true,
		},
		{
			name:  "スケール変換（冷却水温 raw-40）",
			codec: ValueCodec{Kind: CodecScaled, Length: 1, Factor: 1, Offset: -40, Unit: "degC"},
			raw:   []byte{0x78},
			want:  "80",
		},
		{
			name:  "スケール変換（電圧 0.1刻み）",
			codec: ValueCodec{Kind: CodecScaled, Length: 2, Factor: 0.1, Offset: 0, Unit: "V"},
			raw:   []byte{0x00, 0x8A},
			want:  "13.8",
		},
		{
			name:    "長さ不一致",
			codec:   ValueCodec{Kind: CodecASCII, Length: 17},
			raw:     []byte("SHORT"),
			wantErr: true,
		},
		{
			name:  "生バイト列",
			codec: ValueCodec{Kind: CodecRawBytes},
			raw:   []byte{0xDE, 0xAD},
			want:  "DEAD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.codec.DecodeValue(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Error("エラーを期待したがnil")
				}
				return
			}
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeValue() = %q, 期待値 = %q", got, tt.want)
			}
		})
	}
}

// 全コーデック種別で encode→decode の往復が元の値に戻ることを確認する。
func TestValueCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		codec ValueCodec
		value string
	}{
		{"ASCII", ValueCodec{Kind: CodecASCII, Length: 17}, "WVWZZZ1JZXW000001"},
		{"固定幅整数", ValueCodec{Kind: CodecFixedUint, Length: 2}, "1000"},
		{"BCD", ValueCodec{Kind: CodecBCD, Length: 4}, "20240315"},
		{"スケール変換", ValueCodec{Kind: CodecScaled, Length: 1, Factor: 1, Offset: -40}, "80"},
		{"生バイト列", ValueCodec{Kind: CodecRawBytes}, "DEADBEEF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.codec.EncodeValue(tt.value)
			if err != nil {
				t.Fatalf("EncodeValue: 予期しないエラー: %v", err)
			}
			got, err := tt.codec.DecodeValue(raw)
			if err != nil {
				t.Fatalf("DecodeValue: 予期しないエラー: %v", err)
			}
			if got != tt.value {
				t.Errorf("往復結果 = %q, 期待値 = %q", got, tt.value)
			}
		})
	}
}

func TestValueCodec_EncodeValue_Errors(t *testing.T) {
	tests := []struct {
		name  string
		codec ValueCodec
		value string
	}{
		{"整数でない値", ValueCodec{Kind: CodecFixedUint, Length: 2}, "abc"},
		{"幅に収まらない値", ValueCodec{Kind: CodecFixedUint, Length: 1}, "256"},
		{"BCDの奇数桁", ValueCodec{Kind: CodecBCD, Length: 2}, "123"},
		{"BCDの非数字", ValueCodec{Kind: CodecBCD, Length: 2}, "12AB"},
		{"ASCII長超過", ValueCodec{Kind: CodecASCII, Length: 4}, "TOOLONG"},
		{"スケール範囲外", ValueCodec{Kind: CodecScaled, Length: 1, Factor: 1, Offset: -40}, "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.codec.EncodeValue(tt.value); err == nil {
				t.Error("エラーを期待したがnil")
			}
		})
	}
}

func TestValueCodec_EncodeASCIIPadding(t *testing.T) {
	codec := ValueCodec{Kind: CodecASCII, Length: 8}
	raw, err := codec.EncodeValue("ABC")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if !bytes.Equal(raw, []byte("ABC     ")) {
		t.Errorf("raw = % X, 空白埋めの期待値と不一致", raw)
	}
}
