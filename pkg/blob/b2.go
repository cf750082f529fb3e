package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kurin/blazer/b2"
)

// B2Storage Backblaze B2 存储桶
type B2Storage struct {
	client  *b2.Client
	bucket  *b2.Bucket
	baseURL string // 非空时以此拼接公开地址（如 CDN），否则使用 B2 下载地址
}

// NewB2Storage 连接 B2 并打开存储桶
func NewB2Storage(ctx context.Context, keyID, appKey, bucketName, baseURL string) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, keyID, appKey)
	if err != nil {
		return nil, fmt.Errorf("创建 b2 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("打开存储桶失败: %w", err)
	}

	return &B2Storage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put 写入对象并返回可公开访问的地址
func (s *B2Storage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: contentType})

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("写入对象失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("关闭写入流失败: %w", err)
	}

	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	return obj.URL(), nil
}
