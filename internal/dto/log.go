package dto

// ── 访问日志 DTO ──

// AppendLogRequest 客户端上报日志，UserID 由会话决定
// login / login_failed 只由服务端登录流程写入
type AppendLogRequest struct {
	Action  string `json:"action"  binding:"required,oneof=logout view_pdf"`
	Details string `json:"details"`
}

// LogListRequest GET /logs 查询参数
type LogListRequest struct {
	UserID string `form:"userId"`
	Action string `form:"action"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
}

// LogEntryResponse 日志条目
type LogEntryResponse struct {
	UserID    string `json:"userId"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}
