package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ── 表结构（由 pkg/database/migrations 创建） ──

// KVDocument 文档表，对应 kv_documents
type KVDocument struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (KVDocument) TableName() string { return "kv_documents" }

// KVHashField 哈希表，对应 kv_hash
type KVHashField struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Field     string    `gorm:"column:field;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (KVHashField) TableName() string { return "kv_hash" }

// KVListItem 列表表，对应 kv_list，id 越大越靠近表头
type KVListItem struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name  string `gorm:"column:name;not null;index:idx_kv_list_name_id,priority:1"`
	Value string `gorm:"column:value;type:text;not null"`
}

// TableName 指定表名
func (KVListItem) TableName() string { return "kv_list" }

// SQLStore 基于 GORM 的实现（PostgreSQL）
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore 创建 SQLStore，表结构需已迁移
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) DocumentGet(ctx context.Context, key string) (string, bool, error) {
	var doc KVDocument
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

func (s *SQLStore) DocumentSet(ctx context.Context, key, value string) error {
	doc := KVDocument{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error
}

func (s *SQLStore) HashGet(ctx context.Context, name, field string) (string, bool, error) {
	var row KVHashField
	err := s.db.WithContext(ctx).Where("name = ? AND field = ?", name, field).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

func (s *SQLStore) HashSet(ctx context.Context, name, field, value string) error {
	row := KVHashField{Name: name, Field: field, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLStore) HashDelete(ctx context.Context, name, field string) error {
	return s.db.WithContext(ctx).
		Where("name = ? AND field = ?", name, field).
		Delete(&KVHashField{}).Error
}

func (s *SQLStore) HashGetAll(ctx context.Context, name string) (map[string]string, error) {
	var rows []KVHashField
	if err := s.db.WithContext(ctx).Where("name = ?", name).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Field] = r.Value
	}
	return out, nil
}

func (s *SQLStore) ListPushHead(ctx context.Context, name, value string) error {
	return s.db.WithContext(ctx).Create(&KVListItem{Name: name, Value: value}).Error
}

func (s *SQLStore) ListRange(ctx context.Context, name string, start, stop int64) ([]string, error) {
	items, err := s.listWindow(ctx, name, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Value)
	}
	return out, nil
}

// ListTrim 只删除读取快照内（id <= 当时表头 id）落在窗口外的行，
// 并发 ListPushHead 写入的新行 id 更大，不会被误删
func (s *SQLStore) ListTrim(ctx context.Context, name string, start, stop int64) error {
	db := s.db.WithContext(ctx)

	var head []KVListItem
	if err := db.Where("name = ?", name).Order("id DESC").Limit(1).Find(&head).Error; err != nil {
		return err
	}
	if len(head) == 0 {
		return nil
	}
	headID := head[0].ID

	kept, err := s.listWindow(ctx, name, start, stop)
	if err != nil {
		return err
	}
	if len(kept) == 0 {
		return db.Where("name = ? AND id <= ?", name, headID).Delete(&KVListItem{}).Error
	}
	// 窗口按 id 倒序，首项 id 最大
	maxID, minID := kept[0].ID, kept[len(kept)-1].ID
	return db.Where("name = ? AND id <= ? AND (id > ? OR id < ?)", name, headID, maxID, minID).
		Delete(&KVListItem{}).Error
}

func (s *SQLStore) ListClear(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Where("name = ?", name).Delete(&KVListItem{}).Error
}

// Close 关闭底层连接池
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// listWindow 按表头顺序（id 倒序）取出闭区间 [start, stop] 内的行
func (s *SQLStore) listWindow(ctx context.Context, name string, start, stop int64) ([]KVListItem, error) {
	db := s.db.WithContext(ctx).Model(&KVListItem{}).Where("name = ?", name)

	length := int64(-1)
	if start < 0 || stop < 0 {
		if err := db.Count(&length).Error; err != nil {
			return nil, err
		}
	}
	if length < 0 {
		// 非负下标无需精确长度，以 stop+1 作为上界
		length = stop + 1
	}
	lo, hi, ok := NormalizeRange(int(length), start, stop)
	if !ok {
		return nil, nil
	}

	var items []KVListItem
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id DESC").
		Offset(lo).Limit(hi - lo).
		Find(&items).Error
	return items, err
}
