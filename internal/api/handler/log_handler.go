package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// LogHandler 访问日志 HTTP 处理器
type LogHandler struct {
	logSvc service.LogService
}

// NewLogHandler 创建 LogHandler
func NewLogHandler(logSvc service.LogService) *LogHandler {
	return &LogHandler{logSvc: logSvc}
}

// ListLogs 查询日志（管理员）
// GET /api/v1/logs?userId=&action=&limit=
func (h *LogHandler) ListLogs(c *gin.Context) {
	var req dto.LogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badBinding(c, err)
		return
	}

	entries, err := h.logSvc.List(c.Request.Context(), service.LogFilter{
		UserID: req.UserID,
		Action: model.LogAction(req.Action),
		Limit:  req.Limit,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]dto.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.LogEntryResponse{
			UserID:    e.UserID,
			Action:    string(e.Action),
			Details:   e.Details,
			Timestamp: e.Timestamp,
		})
	}
	response.OK(c, items)
}

// AppendLog 上报日志，userId 取自会话
// POST /api/v1/logs
func (h *LogHandler) AppendLog(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.AppendLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	entry := &model.LogEntry{
		UserID:  session.UserID,
		Action:  model.LogAction(req.Action),
		Details: req.Details,
	}
	if err := h.logSvc.Append(c.Request.Context(), entry); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, dto.LogEntryResponse{
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		Details:   entry.Details,
		Timestamp: entry.Timestamp,
	})
}

// ClearLogs 清空日志（管理员，不可恢复）
// DELETE /api/v1/logs
func (h *LogHandler) ClearLogs(c *gin.Context) {
	if err := h.logSvc.Clear(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ExportLogs 导出日志（管理员）
// GET /api/v1/logs/export?format=csv|xlsx
func (h *LogHandler) ExportLogs(c *gin.Context) {
	buf, filename, contentType, err := h.logSvc.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, filename, contentType, buf.Bytes())
}
