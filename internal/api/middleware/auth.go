package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/jwt"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// SessionKey 会话在 gin.Context 中的键
const SessionKey = "session"

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取令牌，还原会话并注入上下文。
// blacklist 为 nil 时跳过黑名单检查；黑名单查询出错时降级放行。
func JWTAuth(jwtMgr *jwt.Manager, blacklist service.TokenBlacklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("查询令牌黑名单失败，降级放行", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, 10002, "Token 已失效")
				c.Abort()
				return
			}
		}

		session := &model.Session{
			UserID:    claims.UserID,
			Name:      claims.Name,
			Role:      model.ParseRole(claims.Role, claims.Schools),
			LoginTime: time.Unix(claims.LoginTime, 0),
			TokenID:   claims.ID,
		}
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
		c.Set(SessionKey, session)
		c.Set("user_id", session.UserID)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前会话是否具有指定角色之一
func RoleAuth(allowed ...model.RoleKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(SessionKey)
		session, ok := v.(*model.Session)
		if !exists || !ok || session == nil {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, kind := range allowed {
			if session.Role.Kind == kind {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
