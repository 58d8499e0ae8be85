package transport

import (
	"bytes"
	"testing"
)

func TestTrimFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  []byte
	}{
		{
			name:  "シングルフレームのパディング除去",
			frame: []byte{0x03, 0x22, 0xF1, 0x90, 0x00, 0x00, 0x00, 0x00},
			want:  []byte{0x03, 0x22, 0xF1, 0x90},
		},
		{
			name:  "ファーストフレームはそのまま",
			frame: []byte{0x10, 0x14, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
			want:  []byte{0x10, 0x14, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
		},
		{
			name:  "コンセキュティブフレームはそのまま",
			frame: []byte{0x21, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D},
			want:  []byte{0x21, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimFrame(tt.frame)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("trimFrame() = % X, 期待値 = % X", got, tt.want)
			}
		})
	}
}
