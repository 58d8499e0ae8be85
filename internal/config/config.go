// Package config はアプリケーション設定を提供する。
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// トランスポートバックエンド種別
const (
	BackendLoopback     = "loopback"
	BackendHTTPGateway  = "httpgw"
	BackendSerialBridge = "serial"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// HTTPサーバー設定
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	GinMode    string `envconfig:"GIN_MODE" default:"release"`

	// サービスカタログ設定（空の場合は組み込みカタログを使用）
	CatalogPath string `envconfig:"CATALOG_PATH"`

	// トランスポート設定
	TransportBackend string `envconfig:"TRANSPORT_BACKEND" default:"loopback"`
	GatewayURL       string `envconfig:"DOIP_GATEWAY_URL"`
	SerialPort       string `envconfig:"SERIAL_PORT"`
	SerialBaudRate   int    `envconfig:"SERIAL_BAUD_RATE" default:"115200"`

	// 値キャッシュ設定（REDIS_HOSTが空の場合はキャッシュ無効）
	RedisHost string `envconfig:"REDIS_HOST"`
	RedisPort string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// 診断ポリシー設定
	DTCClearRequiresExtended bool `envconfig:"DTC_CLEAR_REQUIRES_EXTENDED" default:"false"`

	// ログ設定
	LogLevel   string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogMaskVIN bool   `envconfig:"LOG_MASK_VIN" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// RedisAddr はRedis接続アドレスを "host:port" 形式で返す
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// CacheEnabled は値キャッシュが有効かどうかを返す
func (c *Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	switch c.TransportBackend {
	case BackendLoopback:
	case BackendHTTPGateway:
		if !strings.HasPrefix(c.GatewayURL, "http://") && !strings.HasPrefix(c.GatewayURL, "https://") {
			return fmt.Errorf("DOIP_GATEWAY_URL must start with http:// or https://")
		}
	case BackendSerialBridge:
		if strings.TrimSpace(c.SerialPort) == "" {
			return fmt.Errorf("SERIAL_PORT must not be empty for serial backend")
		}
	default:
		return fmt.Errorf("unknown TRANSPORT_BACKEND: %q", c.TransportBackend)
	}
	return nil
}
