package transport

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/Mnaffeti/sovd-server/internal/config"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// HTTPGateway はリモートDoIPゲートウェイにHTTP経由でUDSメッセージを中継する
// トランスポート。ゲートウェイ障害時の連鎖故障はサーキットブレーカで遮断する。
type HTTPGateway struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
}

// NewHTTPGateway は新しいゲートウェイトランスポートを生成する。
func NewHTTPGateway(cfg *config.Config) *HTTPGateway {
	httpClient := resty.New().
		SetTimeout(config.GatewayRequestTimeout)

	cbSettings := gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	return &HTTPGateway{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(cfg.GatewayURL, "/"),
	}
}

// Open はアドレス指定のゲートウェイリンクを返す。接続はリクエスト毎のため常に成功する。
func (g *HTTPGateway) Open(_ context.Context, address uint16) (Link, error) {
	return &gatewayLink{gw: g, address: address}, nil
}

// udsExchangeRequest はゲートウェイへの中継リクエストボディ。
type udsExchangeRequest struct {
	Address string `json:"address"`
	Request string `json:"request"`
}

// udsExchangeResponse はゲートウェイからの中継応答ボディ。
// 応答抑制された交換ではresponseが空になる。
type udsExchangeResponse struct {
	Response string `json:"response"`
}

// gatewayLink はゲートウェイ経由のECU1台分のリンク。
// HTTP 1往復がUDS 1交換に対応するため、Sendで応答を受領しReceiveで払い出す。
type gatewayLink struct {
	gw      *HTTPGateway
	address uint16
	pending []byte
	hasResp bool
}

func (lk *gatewayLink) Send(ctx context.Context, payload []byte) error {
	start := time.Now()

	result, err := lk.gw.cb.Execute(func() (any, error) {
		resp, err := lk.gw.httpClient.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(&udsExchangeRequest{
				Address: fmt.Sprintf("0x%04X", lk.address),
				Request: hex.EncodeToString(payload),
			}).
			Post(lk.gw.baseURL + "/api/v1/uds/exchange")

		if err != nil {
			return nil, apperr.NewLinkError(fmt.Sprintf("0x%04X", lk.address), "send", err)
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		if statusCode != 200 {
			slog.Error("gateway exchange error",
				"event_id", "GW_EXCHANGE_ERR",
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			return nil, apperr.NewLinkError(fmt.Sprintf("0x%04X", lk.address), "send",
				fmt.Errorf("gateway returned status %d", statusCode))
		}

		slog.Debug("gateway exchange success",
			"latency_ms", latencyMs,
		)
		return resp.Body(), nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("%w: circuit breaker open", apperr.ErrLinkUnavailable)
		}
		return err
	}

	body, ok := result.([]byte)
	if !ok {
		return apperr.NewDecodeError("unexpected gateway result type", nil)
	}

	var exchange udsExchangeResponse
	if err := json.Unmarshal(body, &exchange); err != nil {
		return apperr.NewDecodeError("gateway response is not valid JSON", body)
	}

	if exchange.Response == "" {
		lk.pending = nil
		lk.hasResp = false
		return nil
	}
	raw, err := hex.DecodeString(exchange.Response)
	if err != nil {
		return apperr.NewDecodeError("gateway response is not valid hex", []byte(exchange.Response))
	}
	lk.pending = raw
	lk.hasResp = true
	return nil
}

func (lk *gatewayLink) Receive(ctx context.Context, _ time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !lk.hasResp {
		return nil, fmt.Errorf("%w: no response from gateway", apperr.ErrTimeout)
	}
	resp := lk.pending
	lk.pending = nil
	lk.hasResp = false
	return resp, nil
}

func (lk *gatewayLink) Close() error {
	return nil
}
