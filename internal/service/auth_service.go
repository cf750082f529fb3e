package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/repository"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
)

var (
	ErrLoginRequired      = fmt.Errorf("%w: 用户 ID 和密码为必填项", pkgerrors.ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: 用户 ID 或密码错误", pkgerrors.ErrAuthFailure)
	ErrUserNotFound       = fmt.Errorf("%w: 用户不存在", pkgerrors.ErrNotFound)
	// ErrUnknownUserID 登录时用户 ID 不存在，同时属于 NotFound 与 AuthFailure
	ErrUnknownUserID = fmt.Errorf("%w: %w", pkgerrors.ErrAuthFailure, ErrUserNotFound)
)

// 登录日志详情
const (
	detailUserNotFound = "user id not found"
	detailPasswordMiss = "password mismatch"
	detailLoginSuccess = "login success"
	detailLogout       = "logout"
)

// TokenBlacklist 令牌黑名单，由 Redis 客户端实现；未配置 Redis 时为 nil
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	// Authenticate 校验凭据并写入 login / login_failed 日志
	Authenticate(ctx context.Context, userID, password string) (*model.Session, error)
	// Login Authenticate 之后签发会话令牌
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout 写入 logout 日志并使令牌失效，不返回错误
	Logout(ctx context.Context, session *model.Session)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	logs      LogService
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	passwords passwordHasher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	logs LogService,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		logs:      logs,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		passwords: newPasswordHasher(cfg.Auth.PasswordScheme),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authService) Authenticate(ctx context.Context, userID, password string) (*model.Session, error) {
	if userID == "" || password == "" {
		return nil, ErrLoginRequired
	}

	// 1. 查询用户
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			s.record(ctx, userID, model.ActionLoginFailed, detailUserNotFound)
			return nil, ErrUnknownUserID
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	// 2. 验证密码
	if !s.passwords.Match(user.Password, password) {
		s.record(ctx, userID, model.ActionLoginFailed, detailPasswordMiss)
		return nil, ErrInvalidCredentials
	}

	s.record(ctx, userID, model.ActionLogin, detailLoginSuccess)
	return model.NewSession(user, s.now()), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	session, err := s.Authenticate(ctx, req.UserID, req.Password)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwtMgr.GenerateSessionToken(
		session.UserID, session.Name, string(session.Role.Kind),
		session.Role.Schools, session.LoginTime,
	)
	if err != nil {
		s.logger.Error("生成会话令牌失败", zap.Error(err))
		return nil, err
	}

	defaults := DefaultSchoolFilter(session)
	if defaults == nil {
		defaults = model.SchoolSet{}
	}
	return &dto.LoginResponse{
		AccessToken:    token,
		ExpiresIn:      int(s.jwtMgr.TTL().Seconds()),
		Session:        ToSessionResponse(session),
		DefaultSchools: defaults,
	}, nil
}

func (s *authService) Logout(ctx context.Context, session *model.Session) {
	if session == nil {
		return
	}
	s.record(ctx, session.UserID, model.ActionLogout, detailLogout)

	if s.blacklist == nil || session.TokenID == "" {
		return
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, session.TokenID, ttl); err != nil {
		s.logger.Warn("令牌加入黑名单失败", zap.String("user_id", session.UserID), zap.Error(err))
	}
}

// record 写入认证日志，失败只记 warn
func (s *authService) record(ctx context.Context, userID string, action model.LogAction, details string) {
	entry := &model.LogEntry{UserID: userID, Action: action, Details: details}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Warn("写入访问日志失败",
			zap.String("user_id", userID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// ToSessionResponse 会话 → 响应体
func ToSessionResponse(session *model.Session) dto.SessionResponse {
	schools := []string(session.Role.Schools)
	if schools == nil {
		schools = []string{}
	}
	return dto.SessionResponse{
		UserID:    session.UserID,
		Name:      session.Name,
		Role:      string(session.Role.Kind),
		IsAdmin:   session.Role.IsAdmin(),
		IsTeacher: session.Role.IsTeacher(),
		Schools:   schools,
		LoginTime: session.LoginTime.UTC().Format(time.RFC3339),
	}
}
