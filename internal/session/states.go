// Package session はECU毎の診断セッション状態機械とリンク直列化を提供する。
package session

import "github.com/Mnaffeti/sovd-server/internal/uds"

// State は診断セッションの状態を表す型
type State string

// 診断セッション状態の定数（ISO 14229-1のセッション種別に対応）
const (
	StateDefault     State = "DEFAULT"     // デフォルトセッション
	StateExtended    State = "EXTENDED"    // 拡張診断セッション
	StateProgramming State = "PROGRAMMING" // プログラミングセッション
)

// StateEvent はセッション状態遷移イベントを表す型
type StateEvent string

// セッション遷移イベントの定数
const (
	EventEnterDefault     StateEvent = "ENTER_DEFAULT"     // DiagnosticSessionControl(0x01)成功
	EventEnterExtended    StateEvent = "ENTER_EXTENDED"    // DiagnosticSessionControl(0x03)成功
	EventEnterProgramming StateEvent = "ENTER_PROGRAMMING" // DiagnosticSessionControl(0x02)成功
	EventS3Timeout        StateEvent = "S3_TIMEOUT"        // 無通信タイムアウト
	EventEcuReset         StateEvent = "ECU_RESET"         // ECUReset成功
)

// transitionTable はセッション状態遷移テーブル。
// DiagnosticSessionControlは任意の状態から要求セッションに遷移できる。
// S3タイムアウトとECUResetは常にデフォルトに戻す。
var transitionTable = map[State]map[StateEvent]State{
	StateDefault: {
		EventEnterDefault:     StateDefault,
		EventEnterExtended:    StateExtended,
		EventEnterProgramming: StateProgramming,
		EventS3Timeout:        StateDefault,
		EventEcuReset:         StateDefault,
	},
	StateExtended: {
		EventEnterDefault:     StateDefault,
		EventEnterExtended:    StateExtended,
		EventEnterProgramming: StateProgramming,
		EventS3Timeout:        StateDefault,
		EventEcuReset:         StateDefault,
	},
	StateProgramming: {
		EventEnterDefault:     StateDefault,
		EventEnterExtended:    StateExtended,
		EventEnterProgramming: StateProgramming,
		EventS3Timeout:        StateDefault,
		EventEcuReset:         StateDefault,
	},
}

// ValidateTransition は現在の状態とイベントから次の状態を返す。
// 無効な遷移の場合はErrInvalidStateを返す。
func ValidateTransition(current State, event StateEvent) (State, error) {
	events, ok := transitionTable[current]
	if !ok {
		return "", ErrInvalidState
	}
	next, ok := events[event]
	if !ok {
		return "", ErrInvalidState
	}
	return next, nil
}

// StateFromSubfunction はDiagnosticSessionControlのサブファンクション値を状態に変換する。
func StateFromSubfunction(sub byte) (State, error) {
	switch sub {
	case uds.SubfunctionDefaultSession:
		return StateDefault, nil
	case uds.SubfunctionExtendedSession:
		return StateExtended, nil
	case uds.SubfunctionProgrammingSession:
		return StateProgramming, nil
	default:
		return "", ErrUnknownSessionType
	}
}

// Subfunction は状態をDiagnosticSessionControlのサブファンクション値に変換する。
func (s State) Subfunction() byte {
	switch s {
	case StateExtended:
		return uds.SubfunctionExtendedSession
	case StateProgramming:
		return uds.SubfunctionProgrammingSession
	default:
		return uds.SubfunctionDefaultSession
	}
}

// EnterEvent は状態に入るための遷移イベントを返す。
func (s State) EnterEvent() StateEvent {
	switch s {
	case StateExtended:
		return EventEnterExtended
	case StateProgramming:
		return EventEnterProgramming
	default:
		return EventEnterDefault
	}
}

// ParseState は文字列表現（REST層のsession種別パラメータ）を状態に変換する。
func ParseState(s string) (State, error) {
	switch s {
	case "default":
		return StateDefault, nil
	case "extended":
		return StateExtended, nil
	case "programming":
		return StateProgramming, nil
	default:
		return "", ErrUnknownSessionType
	}
}

// Label は状態のREST層向け小文字表現を返す。
func (s State) Label() string {
	switch s {
	case StateExtended:
		return "extended"
	case StateProgramming:
		return "programming"
	default:
		return "default"
	}
}
