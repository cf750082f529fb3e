package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
)

// ── 上传模块业务错误 ──

var (
	ErrUploadNotConfigured = fmt.Errorf("%w: 未配置文件存储", pkgerrors.ErrUploadFailure)
	ErrUploadFailed        = fmt.Errorf("%w: 文件存储写入失败", pkgerrors.ErrUploadFailure)
	ErrUploadNotPDF        = fmt.Errorf("%w: 仅支持 PDF 文件", pkgerrors.ErrValidation)
	ErrUploadEmpty         = fmt.Errorf("%w: 文件为空", pkgerrors.ErrValidation)
	ErrUploadTooLarge      = fmt.Errorf("%w: 文件超过大小上限", pkgerrors.ErrValidation)
)

const pdfContentType = "application/pdf"

// BlobStorage 文件存储后端（pkg/blob 中的 B2 / 本地目录）
type BlobStorage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// UploadService PDF 上传业务接口
type UploadService interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64) (*dto.UploadResponse, error)
}

type uploadService struct {
	blob     BlobStorage
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewUploadService 创建 UploadService 实例，blob 为 nil 表示未配置存储
func NewUploadService(blob BlobStorage, maxBytes int64, logger *zap.Logger) UploadService {
	return &uploadService{
		blob:     blob,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *uploadService) Upload(ctx context.Context, filename string, r io.Reader, size int64) (*dto.UploadResponse, error) {
	if s.blob == nil {
		return nil, ErrUploadNotConfigured
	}
	if size == 0 {
		return nil, ErrUploadEmpty
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, ErrUploadTooLarge
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, ErrUploadNotPDF
	}

	// 按文件头确认内容为 PDF
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	if len(head) == 0 {
		return nil, ErrUploadEmpty
	}
	if http.DetectContentType(head) != pdfContentType {
		return nil, ErrUploadNotPDF
	}

	name := SanitizeFilename(filepath.Base(filename))
	key := fmt.Sprintf("pdfs/%d_%s", s.now().UnixMilli(), name)

	url, err := s.blob.Put(ctx, key, br, pdfContentType)
	if err != nil {
		s.logger.Error("上传文件失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Info("文件已上传", zap.String("key", key), zap.Int64("size", size))
	return &dto.UploadResponse{URL: url, Filename: name}, nil
}

// SanitizeFilename 将 [A-Za-z0-9._-] 以外的字符替换为 _
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
