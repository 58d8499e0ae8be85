package transport

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Mnaffeti/sovd-server/internal/uds"
)

func exchange(t *testing.T, lk Link, req *uds.Request) *uds.Response {
	t.Helper()
	ctx := context.Background()
	if err := lk.Send(ctx, req.Marshal()); err != nil {
		t.Fatalf("Send: 予期しないエラー: %v", err)
	}
	raw, err := lk.Receive(ctx, time.Second)
	if err != nil {
		t.Fatalf("Receive: 予期しないエラー: %v", err)
	}
	resp, err := uds.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: 予期しないエラー: %v", err)
	}
	return resp
}

func TestLoopback_ReadVIN(t *testing.T) {
	lb := NewLoopback()
	lk, err := lb.Open(context.Background(), 0x7E0)
	if err != nil {
		t.Fatalf("Open: 予期しないエラー: %v", err)
	}
	defer lk.Close()

	resp := exchange(t, lk, uds.NewReadDataByIdentifier(uds.DIDVIN))
	if !resp.Positive {
		t.Fatalf("否定応答: NRC = 0x%02X", resp.NRC)
	}
	vin, err := uds.ParseReadDataResponse(resp, uds.DIDVIN)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(vin) != 17 {
		t.Errorf("VIN長 = %d, 期待値 = 17", len(vin))
	}
}

func TestLoopback_SessionControl(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	resp := exchange(t, lk, uds.NewSessionControl(uds.SubfunctionExtendedSession))
	if !resp.Positive {
		t.Fatalf("否定応答: NRC = 0x%02X", resp.NRC)
	}
	if resp.Data[0] != uds.SubfunctionExtendedSession {
		t.Errorf("セッション種別エコー = 0x%02X, 期待値 = 0x03", resp.Data[0])
	}
}

func TestLoopback_SecurityAccessHandshake(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	seedResp := exchange(t, lk, uds.NewSecurityAccessRequestSeed(1))
	if !seedResp.Positive {
		t.Fatalf("シード要求が否定応答: NRC = 0x%02X", seedResp.NRC)
	}
	seed := uds.ParseSecurityAccessSeed(seedResp)
	if len(seed) == 0 {
		t.Fatal("シードが空")
	}

	key := make([]byte, len(seed))
	for i, b := range seed {
		key[i] = b ^ 0xFF
	}
	keyResp := exchange(t, lk, uds.NewSecurityAccessSendKey(1, key))
	if !keyResp.Positive {
		t.Fatalf("鍵送信が否定応答: NRC = 0x%02X", keyResp.NRC)
	}

	// アンロック済みの再シード要求は全ゼロシード
	again := exchange(t, lk, uds.NewSecurityAccessRequestSeed(1))
	if len(uds.ParseSecurityAccessSeed(again)) != 0 {
		t.Error("アンロック済みのシードが全ゼロでない")
	}
}

func TestLoopback_InvalidKey(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	seedResp := exchange(t, lk, uds.NewSecurityAccessRequestSeed(1))
	seed := uds.ParseSecurityAccessSeed(seedResp)

	wrong := make([]byte, len(seed))
	resp := exchange(t, lk, uds.NewSecurityAccessSendKey(1, wrong))
	if resp.Positive {
		t.Fatal("不正な鍵で肯定応答")
	}
	if resp.NRC != uds.NRCInvalidKey {
		t.Errorf("NRC = 0x%02X, 期待値 = 0x35", resp.NRC)
	}
}

func TestLoopback_DTCReadAndClear(t *testing.T) {
	lb := NewLoopback()
	ecu := NewSimulatedECU(0x7E0)
	ecu.SetDTCs([]uds.DTCRecord{
		{Code: 0x000123, Status: 0x09},
		{Code: 0x400456, Status: 0x04},
	})
	lb.Register(0x7E0, ecu)
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	resp := exchange(t, lk, uds.NewReadDTCByStatusMask(0xFF))
	records, err := uds.ParseReadDTCByStatusMask(resp)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("DTC件数 = %d, 期待値 = 2", len(records))
	}

	clearResp := exchange(t, lk, uds.NewClearDiagnosticInformation(uds.GroupAllDTCs))
	if !clearResp.Positive {
		t.Fatalf("消去が否定応答: NRC = 0x%02X", clearResp.NRC)
	}

	// 消去後はゼロ件。再消去も成功する。
	resp = exchange(t, lk, uds.NewReadDTCByStatusMask(0xFF))
	records, _ = uds.ParseReadDTCByStatusMask(resp)
	if len(records) != 0 {
		t.Errorf("消去後のDTC件数 = %d, 期待値 = 0", len(records))
	}
	clearResp = exchange(t, lk, uds.NewClearDiagnosticInformation(uds.GroupAllDTCs))
	if !clearResp.Positive {
		t.Errorf("再消去が否定応答: NRC = 0x%02X", clearResp.NRC)
	}
}

func TestLoopback_WriteData(t *testing.T) {
	lb := NewLoopback()
	ecu := NewSimulatedECU(0x7E4)
	ecu.SetValue(0x01D1, []byte{0x00})
	lb.Register(0x7E4, ecu)
	lk, _ := lb.Open(context.Background(), 0x7E4)
	defer lk.Close()

	resp := exchange(t, lk, uds.NewWriteDataByIdentifier(0x01D1, []byte{0x02}))
	if !resp.Positive {
		t.Fatalf("書込が否定応答: NRC = 0x%02X", resp.NRC)
	}

	readResp := exchange(t, lk, uds.NewReadDataByIdentifier(0x01D1))
	value, _ := uds.ParseReadDataResponse(readResp, 0x01D1)
	if !bytes.Equal(value, []byte{0x02}) {
		t.Errorf("書込後の値 = % X, 期待値 = 02", value)
	}
}

func TestLoopback_RoutineControl(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	start := exchange(t, lk, uds.NewRoutineControl(uds.SubfunctionStartRoutine, 0x0201, nil))
	if !start.Positive {
		t.Fatalf("開始が否定応答: NRC = 0x%02X", start.NRC)
	}
	status, err := uds.ParseRoutineControlResponse(start, 0x0201)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(status) != 1 || status[0] != 0x01 {
		t.Errorf("開始後ステータス = % X, 期待値 = 01", status)
	}

	stop := exchange(t, lk, uds.NewRoutineControl(uds.SubfunctionStopRoutine, 0x0201, nil))
	if !stop.Positive {
		t.Fatalf("停止が否定応答: NRC = 0x%02X", stop.NRC)
	}

	// 開始していないルーチンの停止は否定応答
	again := exchange(t, lk, uds.NewRoutineControl(uds.SubfunctionStopRoutine, 0x0201, nil))
	if again.Positive {
		t.Fatal("未開始ルーチンの停止で肯定応答")
	}
}

func TestLoopback_SuppressedTesterPresent(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	ctx := context.Background()
	if err := lk.Send(ctx, uds.NewTesterPresent(true).Marshal()); err != nil {
		t.Fatalf("Send: 予期しないエラー: %v", err)
	}
	// 応答抑制時はReceiveがタイムアウト系エラーを返す
	if _, err := lk.Receive(ctx, 10*time.Millisecond); err == nil {
		t.Error("抑制されたTesterPresentに応答が返った")
	}
}

func TestLoopback_UnsupportedService(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	resp := exchange(t, lk, &uds.Request{Service: 0x23})
	if resp.Positive {
		t.Fatal("未対応サービスで肯定応答")
	}
	if resp.NRC != uds.NRCServiceNotSupported {
		t.Errorf("NRC = 0x%02X, 期待値 = 0x11", resp.NRC)
	}
}

func TestLoopback_MalformedRequestLength(t *testing.T) {
	lb := NewLoopback()
	lk, _ := lb.Open(context.Background(), 0x7E0)
	defer lk.Close()

	ctx := context.Background()
	// DID欠落のReadDataByIdentifier
	if err := lk.Send(ctx, []byte{uds.ServiceReadDataByIdentifier, 0x01}); err != nil {
		t.Fatalf("Send: 予期しないエラー: %v", err)
	}
	raw, err := lk.Receive(ctx, time.Second)
	if err != nil {
		t.Fatalf("Receive: 予期しないエラー: %v", err)
	}
	resp, err := uds.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: 予期しないエラー: %v", err)
	}
	if resp.Positive {
		t.Fatal("不正長リクエストで肯定応答")
	}
	if resp.NRC != uds.NRCIncorrectMessageLengthOrInvalidFormat {
		t.Errorf("NRC = 0x%02X, 期待値 = 0x13", resp.NRC)
	}
}
