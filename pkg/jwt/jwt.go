package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

const issuer = "ecc-bulletin"

// SessionClaims 会话令牌声明，携带登录时解析出的会话描述
type SessionClaims struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"` // "admin" | "teacher" | "student"
	Schools   []string `json:"schools,omitempty"`
	LoginTime int64    `json:"login_time"`
	jwtv5.RegisteredClaims
}

// Manager JWT 管理器
type Manager struct {
	secret         []byte
	accessTokenTTL time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// TTL 返回会话令牌有效期
func (m *Manager) TTL() time.Duration {
	return m.accessTokenTTL
}

// GenerateSessionToken 签发会话令牌，返回令牌与过期时间
func (m *Manager) GenerateSessionToken(userID, name, role string, schools []string, loginTime time.Time) (string, time.Time, error) {
	expiresAt := loginTime.Add(m.accessTokenTTL)
	claims := SessionClaims{
		UserID:    userID,
		Name:      name,
		Role:      role,
		Schools:   schools,
		LoginTime: loginTime.Unix(),
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(loginTime),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 解析并验证 Token
func (m *Manager) ParseToken(tokenString string) (*SessionClaims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
