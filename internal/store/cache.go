// Package store は識別系データ項目の読出しキャッシュを提供する。
// 対象はVIN等の不変データのみで、走行中に変化する値はキャッシュしない。
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mnaffeti/sovd-server/internal/config"
)

// キーは sovd:ident:<component>:<data_id> 形式
const keyPrefixIdent = "sovd:ident:"

// ValueCache は識別系データ項目のキャッシュ。
type ValueCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValueCache はRedisに接続してキャッシュを生成する。
// 接続確認のためPINGを実行し、失敗した場合はエラーを返す。
func NewValueCache(cfg *config.Config) (*ValueCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.RedisPass,
		DialTimeout:  config.RedisConnectTimeout,
		ReadTimeout:  config.RedisCommandTimeout,
		WriteTimeout: config.RedisCommandTimeout,
		PoolSize:     config.RedisPoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.RedisConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ValueCache{client: client, ttl: config.IdentDataTTL}, nil
}

// cachedValue はキャッシュエントリのハッシュ表現。
type cachedValue struct {
	Value    string `redis:"value"`
	Unit     string `redis:"unit"`
	CachedAt int64  `redis:"cached_at"`
}

// Get はキャッシュされた値を返す。未登録の場合は ("", false, nil)。
func (c *ValueCache) Get(ctx context.Context, componentID, dataID string) (string, bool, error) {
	key := keyPrefixIdent + componentID + ":" + dataID
	m, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	if len(m) == 0 {
		return "", false, nil
	}
	return m["value"], true, nil
}

// Put は値をTTLつきで保存する。
func (c *ValueCache) Put(ctx context.Context, componentID, dataID, value, unit string) error {
	key := keyPrefixIdent + componentID + ":" + dataID
	entry := &cachedValue{
		Value:    value,
		Unit:     unit,
		CachedAt: time.Now().Unix(),
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, entry)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Invalidate はコンポーネント配下のデータ項目1件を削除する。書込成功後に呼ぶ。
func (c *ValueCache) Invalidate(ctx context.Context, componentID, dataID string) error {
	key := keyPrefixIdent + componentID + ":" + dataID
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Close は接続を閉じる。
func (c *ValueCache) Close() error {
	return c.client.Close()
}

// NewValueCacheWithClient は既存クライアントからキャッシュを生成する。テスト用。
func NewValueCacheWithClient(client *redis.Client, ttl time.Duration) *ValueCache {
	return &ValueCache{client: client, ttl: ttl}
}
