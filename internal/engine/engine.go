// Package engine は高水準の診断意図をUDS交換列に写像するオーケストレータを提供する。
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mnaffeti/sovd-server/internal/catalog"
	"github.com/Mnaffeti/sovd-server/internal/config"
	"github.com/Mnaffeti/sovd-server/internal/logging"
	"github.com/Mnaffeti/sovd-server/internal/session"
	"github.com/Mnaffeti/sovd-server/internal/store"
	"github.com/Mnaffeti/sovd-server/internal/uds"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// KeyFunc はSecurityAccessのシードから鍵を計算する関数。車種別アルゴリズムを差し替える。
type KeyFunc func(level byte, seed []byte) []byte

// DefaultKeyFunc は各バイトを反転する標準の鍵計算。
func DefaultKeyFunc(_ byte, seed []byte) []byte {
	key := make([]byte, len(seed))
	for i, b := range seed {
		key[i] = b ^ 0xFF
	}
	return key
}

// Engine はOrchestratorの実装。
type Engine struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	cache    *store.ValueCache // nilの場合キャッシュ無効
	cfg      *config.Config
	keyFn    KeyFunc
}

// New は新しいエンジンを生成する。cacheはnil可。
func New(cat *catalog.Catalog, sessions *session.Manager, cache *store.ValueCache, cfg *config.Config) *Engine {
	return &Engine{
		catalog:  cat,
		sessions: sessions,
		cache:    cache,
		cfg:      cfg,
		keyFn:    DefaultKeyFunc,
	}
}

// SetKeyFunc は鍵計算関数を差し替える。
func (e *Engine) SetKeyFunc(fn KeyFunc) {
	e.keyFn = fn
}

// ListComponents はカタログ上の全コンポーネントと現在のセッション状態を返す。
func (e *Engine) ListComponents(_ context.Context) []ComponentSummary {
	comps := e.catalog.Components()
	out := make([]ComponentSummary, 0, len(comps))
	for _, c := range comps {
		state, _ := e.sessions.StateOf(c.ID)
		out = append(out, ComponentSummary{
			ID:      c.ID,
			Name:    c.Name,
			Address: fmt.Sprintf("0x%04X", c.Address),
			Session: state.Label(),
		})
	}
	return out
}

// ListDataItems はコンポーネントのデータ項目定義一覧を返す。
func (e *Engine) ListDataItems(_ context.Context, componentID string, categories []string) ([]DataItemInfo, error) {
	cats := make([]catalog.DataCategory, 0, len(categories))
	for _, c := range categories {
		cats = append(cats, catalog.DataCategory(c))
	}
	items, err := e.catalog.DataItems(componentID, cats...)
	if err != nil {
		return nil, err
	}

	out := make([]DataItemInfo, 0, len(items))
	for _, item := range items {
		out = append(out, DataItemInfo{
			ID:       item.ID,
			Name:     item.Name,
			Category: string(item.Category),
			Unit:     item.Codec.Unit,
			Writable: item.Writable,
		})
	}
	return out, nil
}

// ReadDataItem はデータ項目1件を読み出す。識別系はキャッシュを先に引く。
func (e *Engine) ReadDataItem(ctx context.Context, componentID, dataID string) (*DataValue, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpReadData, dataID)
	if err != nil {
		return nil, err
	}
	item := binding.DataItem

	if e.cache != nil && item.Category == catalog.CategoryIdentData {
		if cached, hit, cerr := e.cache.Get(ctx, componentID, dataID); cerr != nil {
			slog.Warn("value cache get failed",
				"event_id", "CACHE_GET_ERR",
				logging.WithComponent(componentID),
				"error", cerr.Error(),
			)
		} else if hit {
			return &DataValue{
				ID:       item.ID,
				Name:     item.Name,
				Value:    cached,
				Unit:     item.Codec.Unit,
				Category: string(item.Category),
				Cached:   true,
			}, nil
		}
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewReadDataByIdentifier(item.DID))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}
	raw, err := uds.ParseReadDataResponse(resp, item.DID)
	if err != nil {
		return nil, err
	}
	value, err := item.Codec.DecodeValue(raw)
	if err != nil {
		return nil, err
	}

	if dataID == "vin" {
		slog.Info("data item read",
			"event_id", "DATA_READ",
			logging.WithComponent(componentID),
			"data_id", dataID,
			"value", logging.MaskVIN(value, e.cfg.LogMaskVIN),
		)
	} else {
		slog.Info("data item read",
			"event_id", "DATA_READ",
			logging.WithComponent(componentID),
			"data_id", dataID,
		)
	}

	if e.cache != nil && item.Category == catalog.CategoryIdentData {
		if cerr := e.cache.Put(ctx, componentID, dataID, value, item.Codec.Unit); cerr != nil {
			slog.Warn("value cache put failed",
				"event_id", "CACHE_PUT_ERR",
				logging.WithComponent(componentID),
				"error", cerr.Error(),
			)
		}
	}

	return &DataValue{
		ID:       item.ID,
		Name:     item.Name,
		Value:    value,
		Unit:     item.Codec.Unit,
		Category: string(item.Category),
	}, nil
}

// WriteDataItem は書込可能なデータ項目へ値を書き込み、エコーを検証する。
func (e *Engine) WriteDataItem(ctx context.Context, componentID, dataID, value string) (*DataValue, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpWriteData, dataID)
	if err != nil {
		return nil, err
	}
	item := binding.DataItem

	raw, err := item.Codec.EncodeValue(value)
	if err != nil {
		return nil, err
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewWriteDataByIdentifier(item.DID, raw))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}
	if _, err := uds.ParseReadDataResponse(resp, item.DID); err != nil {
		return nil, err
	}

	if e.cache != nil && item.Category == catalog.CategoryIdentData {
		if cerr := e.cache.Invalidate(ctx, componentID, dataID); cerr != nil {
			slog.Warn("value cache invalidate failed",
				"event_id", "CACHE_DEL_ERR",
				logging.WithComponent(componentID),
				"error", cerr.Error(),
			)
		}
	}

	return &DataValue{
		ID:       item.ID,
		Name:     item.Name,
		Value:    value,
		Unit:     item.Codec.Unit,
		Category: string(item.Category),
	}, nil
}

// ReadDTCs は故障コードをステータスマスクで読み出す。ゼロ件は正常。
func (e *Engine) ReadDTCs(ctx context.Context, componentID string, statusMask byte) ([]DTCInfo, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpReadDTC, "")
	if err != nil {
		return nil, err
	}
	if statusMask == 0 {
		statusMask = 0xFF
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewReadDTCByStatusMask(statusMask))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}
	records, err := uds.ParseReadDTCByStatusMask(resp)
	if err != nil {
		return nil, err
	}

	out := make([]DTCInfo, 0, len(records))
	for _, rec := range records {
		out = append(out, DTCInfo{
			Code:      rec.Display,
			Status:    fmt.Sprintf("0x%02X", rec.Status),
			Confirmed: rec.Confirmed(),
			Active:    rec.Active(),
		})
	}
	return out, nil
}

// ClearDTCs は故障コードを消去する。消去済みECUへの再実行も成功する。
// 設定により拡張セッション中のみ許可するポリシーを適用できる。
func (e *Engine) ClearDTCs(ctx context.Context, componentID string, group *uint32) error {
	binding, err := e.catalog.Resolve(componentID, catalog.OpClearDTC, "")
	if err != nil {
		return err
	}
	target := uds.GroupAllDTCs
	if group != nil {
		target = *group
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return err
	}
	defer slot.Release()

	if e.cfg.DTCClearRequiresExtended && slot.State() == session.StateDefault {
		return fmt.Errorf("%w: dtc clear requires a non-default session", apperr.ErrPolicyDenied)
	}

	resp, err := e.exchange(ctx, slot, componentID, uds.NewClearDiagnosticInformation(target))
	if err != nil {
		return err
	}
	if err := resp.EcuError(); err != nil {
		return err
	}

	slog.Info("dtc cleared",
		"event_id", "DTC_CLEAR",
		logging.WithComponent(componentID),
		"group", fmt.Sprintf("0x%06X", target),
	)
	return nil
}

// ReadFreezeFrame は指定DTCのスナップショットデータを読み出す。
func (e *Engine) ReadFreezeFrame(ctx context.Context, componentID, dtcCode string) (*FreezeFrame, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpReadDTC, "")
	if err != nil {
		return nil, err
	}
	code, err := uds.ParseDTCString(dtcCode)
	if err != nil {
		return nil, err
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewReadDTCSnapshot(code, 0x01))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}
	data, err := uds.ParseDTCSnapshotResponse(resp, code)
	if err != nil {
		return nil, err
	}

	return &FreezeFrame{
		Code: uds.FormatDTC(code),
		Data: fmt.Sprintf("%X", data),
	}, nil
}

// ControlActuator はアクチュエータのルーチンを制御する。
// durationMsは助言値で、停止ルーチンが定義されたアクチュエータでのみ自動停止に使う。
func (e *Engine) ControlActuator(ctx context.Context, componentID, actuatorID, action string, durationMs int) (*ActuatorResult, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpControlActuator, actuatorID)
	if err != nil {
		return nil, err
	}
	act := binding.Actuator

	var controlType byte
	var routineID uint16
	switch action {
	case ActionStart:
		controlType = uds.SubfunctionStartRoutine
		routineID = act.RoutineID
	case ActionStop:
		controlType = uds.SubfunctionStopRoutine
		routineID = act.RoutineID
		if act.StopRoutineID != 0 {
			routineID = act.StopRoutineID
		}
	case ActionResults:
		controlType = uds.SubfunctionRequestRoutineResults
		routineID = act.RoutineID
	default:
		return nil, fmt.Errorf("%w: actuator action %q", apperr.ErrInvalidRequest, action)
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewRoutineControl(controlType, routineID, nil))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}
	status, err := uds.ParseRoutineControlResponse(resp, routineID)
	if err != nil {
		return nil, err
	}

	result := &ActuatorResult{
		ActuatorID: act.ID,
		Action:     action,
		Running:    len(status) > 0 && status[0] != 0,
	}

	// 自動停止は停止ルーチンを持つアクチュエータのみ。それ以外では助言値として無視する。
	if action == ActionStart && durationMs > 0 && act.StopRoutineID != 0 {
		result.AutoStopMs = durationMs
		e.scheduleAutoStop(componentID, act, time.Duration(durationMs)*time.Millisecond)
	}
	return result, nil
}

// scheduleAutoStop はduration経過後に停止ルーチンを発行するタイマーを仕掛ける。
func (e *Engine) scheduleAutoStop(componentID string, act *catalog.Actuator, after time.Duration) {
	time.AfterFunc(after, func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.P2StarTimeout)
		defer cancel()

		if _, err := e.ControlActuator(ctx, componentID, act.ID, ActionStop, 0); err != nil {
			slog.Warn("actuator auto-stop failed",
				"event_id", "ACTUATOR_AUTOSTOP_ERR",
				logging.WithComponent(componentID),
				"actuator_id", act.ID,
				"error", err.Error(),
			)
			return
		}
		slog.Info("actuator auto-stopped",
			"event_id", "ACTUATOR_AUTOSTOP",
			logging.WithComponent(componentID),
			"actuator_id", act.ID,
		)
	})
}

// SessionControl は診断セッションを切り替える。
// 否定応答およびタイムアウト時は状態を変更せずエラーを返す。
func (e *Engine) SessionControl(ctx context.Context, componentID, sessionType string) (*SessionStatus, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpSessionControl, "")
	if err != nil {
		return nil, err
	}
	target, err := session.ParseState(sessionType)
	if err != nil {
		return nil, fmt.Errorf("%w: session type %q", apperr.ErrInvalidSessionType, sessionType)
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewSessionControl(target.Subfunction()))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}

	if err := slot.ApplyTransition(target.EnterEvent()); err != nil {
		return nil, err
	}
	return &SessionStatus{
		ComponentID:   componentID,
		Session:       slot.State().Label(),
		SecurityLevel: slot.SecurityLevel(),
	}, nil
}

// SecurityAccess はシード/鍵ハンドシェイクで解錠レベルを上げる。
// 鍵不一致の否定応答はそのまま返し、独自の再試行はしない（ECU側の試行回数制限を尊重）。
func (e *Engine) SecurityAccess(ctx context.Context, componentID string, level byte) (*SessionStatus, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpSecurityAccess, "")
	if err != nil {
		return nil, err
	}
	if level == 0 {
		return nil, fmt.Errorf("%w: security level must be 1 or higher", apperr.ErrInvalidRequest)
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	seedResp, err := e.exchange(ctx, slot, componentID, uds.NewSecurityAccessRequestSeed(level))
	if err != nil {
		return nil, err
	}
	if err := seedResp.EcuError(); err != nil {
		return nil, err
	}

	seed := uds.ParseSecurityAccessSeed(seedResp)
	if len(seed) == 0 {
		// 全ゼロシードは解錠済みを意味する
		slot.SetUnlocked(level)
		return &SessionStatus{
			ComponentID:   componentID,
			Session:       slot.State().Label(),
			SecurityLevel: slot.SecurityLevel(),
		}, nil
	}

	keyResp, err := e.exchange(ctx, slot, componentID, uds.NewSecurityAccessSendKey(level, e.keyFn(level, seed)))
	if err != nil {
		return nil, err
	}
	if err := keyResp.EcuError(); err != nil {
		// 鍵不一致時は解錠レベルを変更しない
		return nil, err
	}

	slot.SetUnlocked(level)
	slog.Info("security access unlocked",
		"event_id", "SECURITY_UNLOCK",
		logging.WithComponent(componentID),
		"level", level,
	)
	return &SessionStatus{
		ComponentID:   componentID,
		Session:       slot.State().Label(),
		SecurityLevel: slot.SecurityLevel(),
	}, nil
}

// EcuReset はECUをリセットする。成功時セッションはデフォルトへ戻る。
func (e *Engine) EcuReset(ctx context.Context, componentID, resetType string) (*SessionStatus, error) {
	binding, err := e.catalog.Resolve(componentID, catalog.OpEcuReset, "")
	if err != nil {
		return nil, err
	}

	var sub byte
	switch resetType {
	case ResetHard, "":
		sub = uds.SubfunctionHardReset
	case ResetKeyOffOn:
		sub = uds.SubfunctionKeyOffOnReset
	case ResetSoft:
		sub = uds.SubfunctionSoftReset
	default:
		return nil, fmt.Errorf("%w: reset type %q", apperr.ErrInvalidRequest, resetType)
	}

	slot, err := e.sessions.Acquire(ctx, componentID, binding.Component.Address)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	resp, err := e.exchange(ctx, slot, componentID, uds.NewECUReset(sub))
	if err != nil {
		return nil, err
	}
	if err := resp.EcuError(); err != nil {
		return nil, err
	}

	if err := slot.ApplyTransition(session.EventEcuReset); err != nil {
		return nil, err
	}
	return &SessionStatus{
		ComponentID:   componentID,
		Session:       slot.State().Label(),
		SecurityLevel: slot.SecurityLevel(),
	}, nil
}

// exchange はUDS交換1件を実行する。Response Pending（NRC 0x78）受信時は
// P2*窓で待機を延長し、上限回数を超えたらタイムアウトとして打ち切る。
func (e *Engine) exchange(ctx context.Context, slot *session.Slot, componentID string, req *uds.Request) (*uds.Response, error) {
	link := slot.Link()
	if link == nil {
		return nil, fmt.Errorf("%w: no open link", apperr.ErrLink)
	}

	corrID := uuid.New().String()
	start := time.Now()

	if err := link.Send(ctx, req.Marshal()); err != nil {
		slot.DropLink()
		return nil, err
	}

	timeout := config.P2Timeout
	extensions := 0
	for {
		raw, err := link.Receive(ctx, timeout)
		if err != nil {
			if errors.Is(err, apperr.ErrTimeout) {
				return nil, fmt.Errorf("%w: service 0x%02X after %d pending extensions",
					apperr.ErrTimeout, req.Service, extensions)
			}
			slot.DropLink()
			return nil, err
		}

		resp, err := uds.Decode(raw)
		if err != nil {
			return nil, err
		}

		if resp.Pending() {
			extensions++
			if extensions > config.MaxPendingExtensions {
				return nil, fmt.Errorf("%w: service 0x%02X exceeded %d pending extensions",
					apperr.ErrTimeout, req.Service, config.MaxPendingExtensions)
			}
			timeout = config.P2StarTimeout
			continue
		}

		if resp.Service != req.Service {
			return nil, apperr.NewDecodeError(
				fmt.Sprintf("response for service 0x%02X to request 0x%02X", resp.Service, req.Service), raw)
		}

		slog.Debug("uds exchange",
			"correlation_id", corrID,
			logging.WithComponent(componentID),
			"service", uds.ServiceLabel(req.Service),
			"positive", resp.Positive,
			logging.WithLatency(time.Since(start).Milliseconds()),
			"pending_extensions", extensions,
		)
		return resp, nil
	}
}
