package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// sessionKey 与 middleware.JWTAuth 写入的键一致
const sessionKey = "session"

// MustGetSession 从 Gin 上下文中安全提取会话。
// 如果 JWT 中间件未正确注入会话，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*model.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	s, ok := v.(*model.Session)
	if !ok || s == nil || s.UserID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return s, true
}
