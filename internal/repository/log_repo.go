package repository

import (
	"context"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
)

// LogRepository 访问日志数据访问接口（列表 logs，表头为最新）
type LogRepository interface {
	// Push 插入表头
	Push(ctx context.Context, entry *model.LogEntry) error
	// Trim 仅保留最新 keep 条；与 Push 是两次独立操作
	Trim(ctx context.Context, keep int) error
	// Head 返回最新的 limit 条，损坏的条目被跳过
	Head(ctx context.Context, limit int) ([]model.LogEntry, error)
	Clear(ctx context.Context) error
}

// logRepo LogRepository 的键值存储实现
type logRepo struct {
	s store.Store
}

// NewLogRepo 创建 LogRepository 实例
func NewLogRepo(s store.Store) LogRepository {
	return &logRepo{s: s}
}

func (r *logRepo) Push(ctx context.Context, entry *model.LogEntry) error {
	raw, err := encodeValue(entry)
	if err != nil {
		return err
	}
	return r.s.ListPushHead(ctx, keyLogs, raw)
}

func (r *logRepo) Trim(ctx context.Context, keep int) error {
	return r.s.ListTrim(ctx, keyLogs, 0, int64(keep)-1)
}

func (r *logRepo) Head(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		return []model.LogEntry{}, nil
	}
	raws, err := r.s.ListRange(ctx, keyLogs, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LogEntry, 0, len(raws))
	for _, raw := range raws {
		var e model.LogEntry
		if err := decodeValue(raw, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *logRepo) Clear(ctx context.Context) error {
	return r.s.ListClear(ctx, keyLogs)
}
