package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		// 不区分“用户不存在”与“密码错误”
		if errors.Is(err, pkgerrors.ErrAuthFailure) {
			response.Unauthorized(c, codeAuthFailure, "用户 ID 或密码错误")
			return
		}
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}
	h.authSvc.Logout(c.Request.Context(), session)
	response.OK(c, nil)
}

// Me 当前会话
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}
	response.OK(c, service.ToSessionResponse(session))
}
