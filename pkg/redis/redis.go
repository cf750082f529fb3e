package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
)

// Client Redis 客户端封装
// 既是键值存储驱动（文档 / 哈希 / 列表），也承担会话令牌黑名单
type Client struct {
	rdb    *goredis.Client
	prefix string
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, prefix: cfg.KeyPrefix, logger: logger}, nil
}

func (c *Client) key(name string) string {
	return c.prefix + name
}

// ── 文档 ──

func (c *Client) DocumentGet(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *Client) DocumentSet(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, c.key(key), value, 0).Err()
}

// ── 哈希 ──

func (c *Client) HashGet(ctx context.Context, name, field string) (string, bool, error) {
	v, err := c.rdb.HGet(ctx, c.key(name), field).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *Client) HashSet(ctx context.Context, name, field, value string) error {
	return c.rdb.HSet(ctx, c.key(name), field, value).Err()
}

func (c *Client) HashDelete(ctx context.Context, name, field string) error {
	return c.rdb.HDel(ctx, c.key(name), field).Err()
}

func (c *Client) HashGetAll(ctx context.Context, name string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, c.key(name)).Result()
}

// ── 列表 ──

func (c *Client) ListPushHead(ctx context.Context, name, value string) error {
	return c.rdb.LPush(ctx, c.key(name), value).Err()
}

func (c *Client) ListRange(ctx context.Context, name string, start, stop int64) ([]string, error) {
	return c.rdb.LRange(ctx, c.key(name), start, stop).Result()
}

func (c *Client) ListTrim(ctx context.Context, name string, start, stop int64) error {
	return c.rdb.LTrim(ctx, c.key(name), start, stop).Err()
}

func (c *Client) ListClear(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, c.key(name)).Err()
}

// ── 令牌黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, c.key(blacklistPrefix+jti), "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(blacklistPrefix+jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
