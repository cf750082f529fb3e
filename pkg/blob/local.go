package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage 本地目录存储，由 HTTP 服务以静态文件方式对外提供
type LocalStorage struct {
	dir       string
	publicURL string
}

// NewLocalStorage 创建本地存储，目录不存在时自动创建
func NewLocalStorage(dir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalStorage{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir 返回存储根目录
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Put 写入文件并返回公开地址
func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	clean := filepath.Clean("/" + key)[1:]
	path := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("关闭文件失败: %w", err)
	}

	return s.publicURL + "/" + clean, nil
}
