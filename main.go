// Package main はSOVD診断サーバーのエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Mnaffeti/sovd-server/internal/catalog"
	"github.com/Mnaffeti/sovd-server/internal/config"
	"github.com/Mnaffeti/sovd-server/internal/engine"
	"github.com/Mnaffeti/sovd-server/internal/handler"
	"github.com/Mnaffeti/sovd-server/internal/server"
	"github.com/Mnaffeti/sovd-server/internal/session"
	"github.com/Mnaffeti/sovd-server/internal/store"
	"github.com/Mnaffeti/sovd-server/internal/transport"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	initLogger(cfg)

	slog.Info("starting sovd-server",
		"listen_addr", cfg.ListenAddr,
		"log_level", cfg.LogLevel,
		"transport_backend", cfg.TransportBackend,
		"cache_enabled", cfg.CacheEnabled(),
	)

	// 3. サービスカタログ読み込み
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// 4. トランスポート選択
	opener, err := newOpener(cfg)
	if err != nil {
		slog.Error("failed to initialize transport", "error", err)
		os.Exit(1)
	}

	// 5. 値キャッシュ（REDIS_HOST未設定時は無効）
	var cache *store.ValueCache
	if cfg.CacheEnabled() {
		cache, err = store.NewValueCache(cfg)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
	}

	// 6. セッションマネージャ
	manager := session.NewManager(opener)

	// 7. オーケストレータ
	orchestrator := engine.New(cat, manager, cache, cfg)

	// 8. ハンドラー
	diagHandler := handler.NewDiagnosticHandler(orchestrator, cfg)

	// 9. サーバー起動
	srv := server.New(cfg, diagHandler)
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// 10. シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// セッションを閉じてからキャッシュ接続を解放する
	manager.Close()
	if cache != nil {
		if err := cache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// newOpener は設定されたバックエンドのトランスポートを生成する。
func newOpener(cfg *config.Config) (transport.Opener, error) {
	switch cfg.TransportBackend {
	case config.BackendHTTPGateway:
		return transport.NewHTTPGateway(cfg), nil
	case config.BackendSerialBridge:
		return transport.NewSerialBridge(cfg)
	default:
		// loopback: 組み込みの模擬ECU（デモモード）
		return transport.NewLoopback(), nil
	}
}

// initLogger はロガーを初期化する。
func initLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	h := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(h).With("app", "sovd-server")
	slog.SetDefault(logger)
}
