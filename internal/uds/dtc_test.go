package uds

import (
	"errors"
	"strings"
	"testing"

	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

func TestFormatDTC(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		want string
	}{
		{"パワートレイン系", 0x000123, "P0123"},
		{"シャシ系", 0x400456, "C0456"},
		{"ボディ系", 0x800789, "B0789"},
		{"ネットワーク系", 0xC00ABC, "U0ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDTC(tt.code); got != tt.want {
				t.Errorf("FormatDTC(0x%06X) = %q, 期待値 = %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestParseDTCString(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"P0123", 0x000123, false},
		{"C0456", 0x400456, false},
		{"B0789", 0x800789, false},
		{"U0ABC", 0xC00ABC, false},
		{"u0abc", 0xC00ABC, false},
		{"X0123", 0, true},
		{"P01", 0, true},
		{"P0ZZZ", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDTCString(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDTCString(%q): エラーを期待したがnil", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDTCString(%q): 予期しないエラー: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDTCString(%q) = 0x%06X, 期待値 = 0x%06X", tt.in, got, tt.want)
		}
		// FormatDTCとの往復（大文字表記のみ）
		if upper := strings.ToUpper(tt.in); FormatDTC(got) != upper {
			t.Errorf("往復不一致: FormatDTC = %q, 期待値 = %q", FormatDTC(got), upper)
		}
	}
}

func TestParseReadDTCByStatusMask(t *testing.T) {
	t.Run("複数レコード", func(t *testing.T) {
		resp := &Response{
			Service:  ServiceReadDTCInformation,
			Positive: true,
			Data: []byte{
				0x02, 0xFF, // サブファンクションエコー + 可用マスク
				0x00, 0x01, 0x23, 0x09, // P0123 confirmed+testFailed
				0x40, 0x04, 0x56, 0x04, // C0456 pending
			},
		}
		records, err := ParseReadDTCByStatusMask(resp)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("レコード数 = %d, 期待値 = 2", len(records))
		}
		if records[0].Display != "P0123" || !records[0].Confirmed() || !records[0].Active() {
			t.Errorf("records[0] = %+v", records[0])
		}
		if records[1].Display != "C0456" || records[1].Confirmed() {
			t.Errorf("records[1] = %+v", records[1])
		}
	})

	t.Run("レコードゼロ件は正常", func(t *testing.T) {
		resp := &Response{
			Service:  ServiceReadDTCInformation,
			Positive: true,
			Data:     []byte{0x02, 0xFF},
		}
		records, err := ParseReadDTCByStatusMask(resp)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("レコード数 = %d, 期待値 = 0", len(records))
		}
	})

	t.Run("4バイト境界に揃わないリストはデコードエラー", func(t *testing.T) {
		resp := &Response{
			Service:  ServiceReadDTCInformation,
			Positive: true,
			Data:     []byte{0x02, 0xFF, 0x00, 0x01, 0x23},
		}
		_, err := ParseReadDTCByStatusMask(resp)
		if !errors.Is(err, apperr.ErrMalformedResponse) {
			t.Errorf("errors.Is(err, ErrMalformedResponse) = false, err = %v", err)
		}
	})

	t.Run("可用マスク欠落はデコードエラー", func(t *testing.T) {
		resp := &Response{Service: ServiceReadDTCInformation, Positive: true, Data: []byte{0x02}}
		_, err := ParseReadDTCByStatusMask(resp)
		if !errors.Is(err, apperr.ErrMalformedResponse) {
			t.Errorf("errors.Is(err, ErrMalformedResponse) = false, err = %v", err)
		}
	})
}

func TestParseDTCSnapshotResponse(t *testing.T) {
	t.Run("DTCエコー一致", func(t *testing.T) {
		resp := &Response{
			Service:  ServiceReadDTCInformation,
			Positive: true,
			Data:     []byte{0x04, 0x00, 0x01, 0x23, 0x09, 0xAA, 0xBB},
		}
		snap, err := ParseDTCSnapshotResponse(resp, 0x000123)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(snap) != 2 || snap[0] != 0xAA {
			t.Errorf("snapshot = % X", snap)
		}
	})

	t.Run("DTCエコー不一致", func(t *testing.T) {
		resp := &Response{
			Service:  ServiceReadDTCInformation,
			Positive: true,
			Data:     []byte{0x04, 0x00, 0x99, 0x99, 0x09},
		}
		_, err := ParseDTCSnapshotResponse(resp, 0x000123)
		if !errors.Is(err, apperr.ErrMalformedResponse) {
			t.Errorf("errors.Is(err, ErrMalformedResponse) = false, err = %v", err)
		}
	})
}
