package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// UploadHandler PDF 上传 HTTP 处理器
type UploadHandler struct {
	uploadSvc service.UploadService
}

// NewUploadHandler 创建 UploadHandler
func NewUploadHandler(uploadSvc service.UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

// Upload 上传 PDF（管理员）
// POST /api/v1/upload  multipart 字段 file
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeValidation, "请选择要上传的文件")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, codeValidation, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.uploadSvc.Upload(c.Request.Context(), fileHeader.Filename, f, fileHeader.Size)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
