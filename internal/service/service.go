package service

import (
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Announcement AnnouncementService
	User         UserService
	Log          LogService
	Upload       UploadService
}

// NewService 创建 Service 聚合
// blacklist、blob 可为 nil（未配置 Redis / 文件存储）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	blob BlobStorage,
	logger *zap.Logger,
) *Service {
	logs := NewLogService(cfg.Audit, repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, logs, jwtMgr, blacklist, logger),
		Announcement: NewAnnouncementService(repo, logs, logger),
		User:         NewUserService(cfg, repo, logger),
		Log:          logs,
		Upload:       NewUploadService(blob, cfg.Blob.MaxFileBytes, logger),
	}
}
