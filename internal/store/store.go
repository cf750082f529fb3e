// Package store 定义持久化键值存储的最小契约。
//
// 业务层只依赖文档、哈希、列表三类操作，所有值以 JSON 文本跨越存储边界。
// 具体驱动：memory（测试/开发）、bolt（单机文件）、sql（PostgreSQL）、
// 以及 pkg/redis 中的 Redis 客户端。
package store

import "context"

// Store 键值存储契约
//
// 列表下标语义与 Redis 一致：闭区间，负数表示从尾部倒数。
type Store interface {
	DocumentGet(ctx context.Context, key string) (string, bool, error)
	DocumentSet(ctx context.Context, key, value string) error

	HashGet(ctx context.Context, name, field string) (string, bool, error)
	HashSet(ctx context.Context, name, field, value string) error
	HashDelete(ctx context.Context, name, field string) error
	HashGetAll(ctx context.Context, name string) (map[string]string, error)

	ListPushHead(ctx context.Context, name, value string) error
	ListRange(ctx context.Context, name string, start, stop int64) ([]string, error)
	ListTrim(ctx context.Context, name string, start, stop int64) error
	ListClear(ctx context.Context, name string) error

	Close() error
}

// NormalizeRange 将 Redis 风格的闭区间下标换算为 [lo, hi) 半开区间
// ok=false 表示区间为空
func NormalizeRange(length int, start, stop int64) (lo, hi int, ok bool) {
	n := int64(length)
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}
