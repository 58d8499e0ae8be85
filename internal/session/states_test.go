package session

import (
	"errors"
	"testing"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		current State
		event   StateEvent
		want    State
		wantErr bool
	}{
		{"デフォルトから拡張へ", StateDefault, EventEnterExtended, StateExtended, false},
		{"拡張からプログラミングへ", StateExtended, EventEnterProgramming, StateProgramming, false},
		{"S3タイムアウトでデフォルト復帰", StateExtended, EventS3Timeout, StateDefault, false},
		{"ECUResetでデフォルト復帰", StateProgramming, EventEcuReset, StateDefault, false},
		{"同一セッション再進入", StateExtended, EventEnterExtended, StateExtended, false},
		{"未知の状態", State("UNKNOWN"), EventEnterDefault, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTransition(tt.current, tt.event)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Errorf("errors.Is(err, ErrInvalidState) = false, err = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if got != tt.want {
				t.Errorf("次状態 = %s, 期待値 = %s", got, tt.want)
			}
		})
	}
}

func TestStateFromSubfunction(t *testing.T) {
	tests := []struct {
		sub     byte
		want    State
		wantErr bool
	}{
		{0x01, StateDefault, false},
		{0x02, StateProgramming, false},
		{0x03, StateExtended, false},
		{0x7F, "", true},
	}

	for _, tt := range tests {
		got, err := StateFromSubfunction(tt.sub)
		if tt.wantErr {
			if err == nil {
				t.Errorf("StateFromSubfunction(0x%02X): エラーを期待したがnil", tt.sub)
			}
			continue
		}
		if err != nil {
			t.Errorf("StateFromSubfunction(0x%02X): 予期しないエラー: %v", tt.sub, err)
			continue
		}
		if got != tt.want {
			t.Errorf("StateFromSubfunction(0x%02X) = %s, 期待値 = %s", tt.sub, got, tt.want)
		}
		// 逆変換も一致すること
		if got.Subfunction() != tt.sub {
			t.Errorf("%s.Subfunction() = 0x%02X, 期待値 = 0x%02X", got, got.Subfunction(), tt.sub)
		}
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"default", StateDefault, false},
		{"extended", StateExtended, false},
		{"programming", StateProgramming, false},
		{"turbo", "", true},
	}

	for _, tt := range tests {
		got, err := ParseState(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSessionType) {
				t.Errorf("ParseState(%q): errors.Is = false, err = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseState(%q) = (%s, %v), 期待値 = %s", tt.in, got, err, tt.want)
		}
	}
}
