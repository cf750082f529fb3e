package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	bucketDocuments = []byte("documents")
	bucketHashes    = []byte("hashes") // 每个哈希表是其下的子 bucket
	bucketLists     = []byte("lists")  // 值为 JSON 字符串数组，下标 0 为表头
)

// BoltStore 基于 bbolt 的单机文件存储
// 每个操作在单个 bbolt 事务内完成
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore 打开（或创建）数据文件并初始化 bucket
func OpenBoltStore(path string, timeout time.Duration, logger *zap.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("打开 bolt 文件失败: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDocuments, bucketHashes, bucketLists} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化 bolt bucket 失败: %w", err)
	}

	logger.Info("bolt 存储就绪", zap.String("path", path))
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DocumentGet(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketDocuments).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found, err
}

func (s *BoltStore) DocumentSet(_ context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(key), []byte(value))
	})
}

func (s *BoltStore) HashGet(_ context.Context, name, field string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		h := tx.Bucket(bucketHashes).Bucket([]byte(name))
		if h == nil {
			return nil
		}
		if v := h.Get([]byte(field)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found, err
}

func (s *BoltStore) HashSet(_ context.Context, name, field, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		h, err := tx.Bucket(bucketHashes).CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		return h.Put([]byte(field), []byte(value))
	})
}

func (s *BoltStore) HashDelete(_ context.Context, name, field string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		h := tx.Bucket(bucketHashes).Bucket([]byte(name))
		if h == nil {
			return nil
		}
		return h.Delete([]byte(field))
	})
}

func (s *BoltStore) HashGetAll(_ context.Context, name string) (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		h := tx.Bucket(bucketHashes).Bucket([]byte(name))
		if h == nil {
			return nil
		}
		return h.ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) ListPushHead(_ context.Context, name, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLists)
		l, err := readList(b, name)
		if err != nil {
			return err
		}
		return writeList(b, name, append([]string{value}, l...))
	})
}

func (s *BoltStore) ListRange(_ context.Context, name string, start, stop int64) ([]string, error) {
	out := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		l, err := readList(tx.Bucket(bucketLists), name)
		if err != nil {
			return err
		}
		if lo, hi, ok := NormalizeRange(len(l), start, stop); ok {
			out = l[lo:hi]
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) ListTrim(_ context.Context, name string, start, stop int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketLists)
		l, err := readList(b, name)
		if err != nil {
			return err
		}
		lo, hi, ok := NormalizeRange(len(l), start, stop)
		if !ok {
			return b.Delete([]byte(name))
		}
		return writeList(b, name, l[lo:hi])
	})
}

func (s *BoltStore) ListClear(_ context.Context, name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLists).Delete([]byte(name))
	})
}

// Close 关闭 bolt 文件
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func readList(b *bbolt.Bucket, name string) ([]string, error) {
	raw := b.Get([]byte(name))
	if raw == nil {
		return nil, nil
	}
	var l []string
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("列表 %s 数据损坏: %w", name, err)
	}
	return l, nil
}

func writeList(b *bbolt.Bucket, name string, l []string) error {
	raw, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return b.Put([]byte(name), raw)
}
