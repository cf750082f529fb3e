package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
)

// ErrRecordNotFound 记录不存在
var ErrRecordNotFound = errors.New("record not found")

// 存储键
const (
	keyAnnouncements   = "announcements"
	keyAnnouncementSeq = "announcement_seq"
	keyUsers           = "users"
	keyLogs            = "logs"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Announcement AnnouncementRepository
	User         UserRepository
	Log          LogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(s store.Store) *Repository {
	return &Repository{
		Announcement: NewAnnouncementRepo(s),
		User:         NewUserRepo(s),
		Log:          NewLogRepo(s),
	}
}

// decodeValue 解析存储中的 JSON 值
// 兼容被二次编码为 JSON 字符串的值（如 "{\"id\":1}"）
func decodeValue(raw string, v interface{}) error {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	var inner string
	if json.Unmarshal([]byte(raw), &inner) == nil {
		return json.Unmarshal([]byte(inner), v)
	}
	return err
}

// encodeValue 序列化为存储用 JSON 文本
func encodeValue(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("序列化失败: %w", err)
	}
	return string(b), nil
}
