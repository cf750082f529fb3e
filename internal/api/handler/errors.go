package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	pkgerrors "github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/errors"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// 业务错误码
const (
	codeValidation       = 10001
	codeNotFound         = 10004
	codeAuthFailure      = 11001
	codeDuplicateID      = 20002
	codeProtectedAccount = 20003
	codeUploadFailed     = 30001
	codeUploadDisabled   = 30002
)

// handleServiceError 按错误分类映射 HTTP 状态码
// 未归类的错误一律 500，不向客户端暴露细节
func handleServiceError(c *gin.Context, err error) {
	switch pkgerrors.Kind(err) {
	case pkgerrors.ErrValidation:
		response.BadRequest(c, codeValidation, err.Error())
	case pkgerrors.ErrNotFound:
		response.NotFound(c, codeNotFound, err.Error())
	case pkgerrors.ErrDuplicateID:
		response.Conflict(c, codeDuplicateID, err.Error())
	case pkgerrors.ErrProtectedAccount:
		response.BadRequest(c, codeProtectedAccount, err.Error())
	case pkgerrors.ErrAuthFailure:
		response.Unauthorized(c, codeAuthFailure, err.Error())
	case pkgerrors.ErrUploadFailure:
		if errors.Is(err, service.ErrUploadNotConfigured) {
			response.Error(c, http.StatusServiceUnavailable, codeUploadDisabled, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, codeUploadFailed, "文件上传失败")
	default:
		response.InternalError(c)
	}
}

// badBinding 请求体或查询参数绑定失败，details 带上校验器的原始信息
func badBinding(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "参数校验失败", err.Error())
}
