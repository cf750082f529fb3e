package handler

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器（管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, users)
}

// CreateUser 新建用户
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, user)
}

// UpdateUser 更新用户
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ImportUsers 批量导入
// POST /api/v1/users/import
//
// multipart 字段 file：.xlsx 按工作簿解析，其余按 CSV 解析。
func (h *UserHandler) ImportUsers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeValidation, "请上传导入文件")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, codeValidation, "无法读取上传文件")
		return
	}
	defer f.Close()

	var rows []dto.ImportUserRow
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		rows, err = h.userSvc.ParseImportXLSX(f)
	} else {
		rows, err = h.userSvc.ParseImportCSV(f)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, h.userSvc.Import(c.Request.Context(), rows))
}

// ExportUsers 导出用户名单（CSV）
// GET /api/v1/users/export
func (h *UserHandler) ExportUsers(c *gin.Context) {
	buf, err := h.userSvc.ExportCSV(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, "users.csv", "text/csv; charset=utf-8", buf.Bytes())
}
