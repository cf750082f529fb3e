package model

// LogAction 访问日志动作
type LogAction string

const (
	ActionLogin       LogAction = "login"
	ActionLoginFailed LogAction = "login_failed"
	ActionLogout      LogAction = "logout"
	ActionViewPDF     LogAction = "view_pdf"
)

// Valid 是否为已知动作
func (a LogAction) Valid() bool {
	switch a {
	case ActionLogin, ActionLoginFailed, ActionLogout, ActionViewPDF:
		return true
	}
	return false
}

// LogEntry 访问日志条目，以 JSON 存放于列表 logs（表头为最新）
// Timestamp 为 ISO-8601 字符串，由服务端写入
type LogEntry struct {
	UserID    string    `json:"userId"`
	Action    LogAction `json:"action"`
	Details   string    `json:"details"`
	Timestamp string    `json:"timestamp"`
}
